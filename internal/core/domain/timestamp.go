package domain

const (
	createdLayout = "2006-01-02T15:04:05Z"
	updatedLayout = "2006-01-02T15:04:05.000Z"
)

// CreatedAtText renders the creation time at second precision.
func (o Order) CreatedAtText() string {
	return o.CreatedAt.UTC().Format(createdLayout)
}

// UpdatedAtText renders the last mutation time. Until the first transition it
// is identical to CreatedAtText; afterwards it carries milliseconds.
func (o Order) UpdatedAtText() string {
	if o.Status == OrderStatusPending {
		return o.UpdatedAt.UTC().Format(createdLayout)
	}
	return o.UpdatedAt.UTC().Format(updatedLayout)
}
