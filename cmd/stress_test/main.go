package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const createPayload = `{"items":[
	{"product_id":"PROD-001","quantity":2,"unit_price":9.99},
	{"product_id":"PROD-002","quantity":1,"unit_price":24.50}]}`

func main() {
	baseURL := flag.String("url", "http://localhost:8080/api/v1", "order API base URL")
	totalRequests := flag.Int("requests", 50, "concurrent transition requests per order")
	rounds := flag.Int("rounds", 10, "orders to race on")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	var failedRounds int
	start := time.Now()

	for round := 0; round < *rounds; round++ {
		orderID, err := createOrder(client, *baseURL)
		if err != nil {
			log.Fatalf("failed to create order: %v", err)
		}

		var successCount atomic.Int32
		var conflictCount atomic.Int32
		var errorCount atomic.Int32
		var wg sync.WaitGroup

		for i := 0; i < *totalRequests; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()

				action := "confirm"
				if i%2 == 1 {
					action = "cancel"
				}
				resp, err := client.Post(fmt.Sprintf("%s/orders/%s/%s", *baseURL, orderID, action), "application/json", nil)
				if err != nil {
					errorCount.Add(1)
					return
				}
				resp.Body.Close()

				switch resp.StatusCode {
				case http.StatusOK:
					successCount.Add(1)
				case http.StatusConflict:
					conflictCount.Add(1)
				default:
					errorCount.Add(1)
				}
			}(i)
		}

		wg.Wait()

		if successCount.Load() != 1 || errorCount.Load() != 0 {
			failedRounds++
		}
		fmt.Printf("order %s: success=%d conflict=%d error=%d\n",
			orderID, successCount.Load(), conflictCount.Load(), errorCount.Load())
	}

	elapsed := time.Since(start)

	fmt.Println("========== Stress Test Results ==========")
	fmt.Printf("Rounds:              %d\n", *rounds)
	fmt.Printf("Requests per round:  %d\n", *totalRequests)
	fmt.Printf("Failed rounds:       %d\n", failedRounds)
	fmt.Printf("Elapsed:             %v\n", elapsed)
	fmt.Println("==========================================")

	if failedRounds > 0 {
		log.Fatalf("FAIL: %d rounds did not have exactly one successful transition", failedRounds)
	}
	fmt.Println("PASS: every order transitioned exactly once")
}

func createOrder(client *http.Client, baseURL string) (string, error) {
	resp, err := client.Post(baseURL+"/orders", "application/json", bytes.NewBufferString(createPayload))
	if err != nil {
		return "", fmt.Errorf("post order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode order: %w", err)
	}
	return body.ID, nil
}
