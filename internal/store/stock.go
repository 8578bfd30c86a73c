package store

import "context"

// availableSQL sums on-hand minus reserved of the quants stored at exactly one location.
// Child locations are not included.
const availableSQL = `
SELECT COALESCE(SUM(q.quantity - q.reserved_quantity), 0)
FROM stock_quant q
WHERE q.product_id = ? AND q.location_id = ?`

// Available returns on-hand minus reserved quantity of a product at a location
func (s *Store) Available(ctx context.Context, productID, locationID int64) (float64, error) {
	var qty float64
	err := s.db.WithContext(ctx).Raw(availableSQL, productID, locationID).Scan(&qty).Error
	return qty, err
}
