package reports

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/vsinha/spares/pkg/application/dto"
)

// SQLSource runs the reports as single queries against the postgres schema
type SQLSource struct {
	db *sqlx.DB
}

// Connect opens a sqlx connection through the lib/pq driver
func Connect(databaseURL string) (*SQLSource, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect report database: %w", err)
	}
	return &SQLSource{db: db}, nil
}

func (s *SQLSource) Close() error {
	return s.db.Close()
}

var _ Source = (*SQLSource)(nil)

const lowStockQuery = `
	select p.id as spare_part_id
		,p.part_number
		,p.name as part_name
		,l.id as location_id
		,l.code as location_code
		,s.quantity_on_hand as on_hand
		,s.quantity_reserved as reserved
		,s.quantity_on_hand - s.quantity_reserved as available
		,p.reorder_point
		,p.min_stock_level
	from stock_levels s
	join spare_parts p on p.id = s.spare_part_id
	join locations l on l.id = s.location_id
	where p.is_active
	and s.quantity_on_hand - s.quantity_reserved <= p.reorder_point
	and (cardinality($1::text[]) = 0 or s.location_id = any($1))
	order by (s.quantity_on_hand - s.quantity_reserved - p.reorder_point), p.part_number, l.code
`

func (s *SQLSource) LowStock(ctx context.Context, filter Filter) ([]dto.LowStockRow, error) {
	rows := []dto.LowStockRow{}
	if err := s.db.SelectContext(ctx, &rows, lowStockQuery, locationArray(filter)); err != nil {
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	return rows, nil
}

const valuationQuery = `
	select l.id as location_id
		,l.code as location_code
		,count(*) as parts
		,sum(s.quantity_on_hand) as units
		,round(sum(s.quantity_on_hand * p.unit_cost), 2) as value
	from stock_levels s
	join spare_parts p on p.id = s.spare_part_id
	join locations l on l.id = s.location_id
	where s.quantity_on_hand > 0
	and (cardinality($1::text[]) = 0 or s.location_id = any($1))
	group by l.id, l.code
	order by l.code
`

func (s *SQLSource) Valuation(ctx context.Context, filter Filter) ([]dto.ValuationRow, error) {
	rows := []dto.ValuationRow{}
	if err := s.db.SelectContext(ctx, &rows, valuationQuery, locationArray(filter)); err != nil {
		return nil, fmt.Errorf("failed to query stock valuation: %w", err)
	}
	return rows, nil
}

// locationArray binds the location filter. A nil slice would bind SQL NULL,
// which no row matches.
func locationArray(filter Filter) any {
	ids := filter.LocationIDs
	if ids == nil {
		ids = []string{}
	}
	return pq.Array(ids)
}
