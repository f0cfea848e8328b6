package services

import (
	"context"
	"sort"

	"github.com/vsinha/spares/pkg/application/dto"
	"github.com/vsinha/spares/pkg/application/services/shared"
	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/repositories"
)

// PlanReplenishment nets every stock row against stock already on its way
// (open purchase orders, approved indents and open transfers) and plans an
// order for each row at or below its reorder point. A shortage is covered
// by a transfer when another location holds enough above its own reorder
// point, otherwise by a purchase.
func (s *Service) PlanReplenishment(ctx context.Context) (*dto.ReplenishmentPlan, error) {
	var plan *dto.ReplenishmentPlan
	err := s.view(ctx, func(tx repositories.Tx) error {
		var err error
		plan, err = s.plan(tx)
		return err
	})
	return plan, err
}

func (s *Service) plan(tx repositories.Tx) (*dto.ReplenishmentPlan, error) {
	now := s.now()
	parts, err := tx.Parts().List(repositories.PartFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	levels, err := tx.Stock().List(repositories.StockFilter{})
	if err != nil {
		return nil, err
	}
	positions := shared.NewPositionMapFromLevels(levels)
	if err := addIncoming(tx, positions); err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.SparePart, len(parts))
	for _, p := range parts {
		byID[p.ID] = p
	}
	plan := &dto.ReplenishmentPlan{GeneratedAt: now}
	for _, key := range positions.Keys() {
		part, ok := byID[key.SparePartID]
		if !ok {
			continue
		}
		pos := positions[key]
		if pos.Projected() > part.ReorderPoint {
			continue
		}
		qty := entities.ShortfallQuantity(part, pos.Projected(), 0)
		if qty == 0 {
			plan.Shortages = append(plan.Shortages, dto.LowStockRow{
				SparePartID:  part.ID,
				PartNumber:   part.PartNumber,
				PartName:     part.Name,
				LocationID:   key.LocationID,
				Available:    pos.Available,
				ReorderPoint: part.ReorderPoint,
				MinStock:     part.MinStockLevel,
			})
			continue
		}

		orderType, source := entities.Buy, ""
		if src := bestSource(positions, part, key.LocationID, qty); src != "" {
			orderType, source = entities.Transfer, src
			positions.Commit(part.ID, src, qty)
		}
		order, err := entities.NewReplenishmentOrder(part.ID, part.PartNumber, key.LocationID, qty, orderType, source, now)
		if err != nil {
			return nil, err
		}
		order.Available = pos.Available
		order.Incoming = pos.Incoming
		order.ReorderPoint = part.ReorderPoint
		plan.Orders = append(plan.Orders, *order)
	}
	return plan, nil
}

// bestSource returns the location with the largest surplus able to cover qty
func bestSource(positions shared.PositionMap, part *entities.SparePart, dest string, qty entities.Quantity) string {
	var (
		best    string
		surplus entities.Quantity
	)
	for _, loc := range positions.Locations(part.ID) {
		if loc == dest {
			continue
		}
		if sp := positions.Surplus(part.ID, loc, part.ReorderPoint); sp >= qty && sp > surplus {
			best, surplus = loc, sp
		}
	}
	return best
}

func addIncoming(tx repositories.Tx, positions shared.PositionMap) error {
	pos, err := repositories.ListDocuments[*entities.PurchaseOrder](tx.Documents(), repositories.DocumentFilter{})
	if err != nil {
		return err
	}
	for _, po := range pos {
		if !po.CanReceive() && po.Status != entities.PODraft {
			continue
		}
		for _, it := range po.Items {
			positions.AddIncoming(it.SparePartID, po.DeliveryLocationID, it.Outstanding())
		}
	}

	indents, err := repositories.ListDocuments[*entities.Indent](tx.Documents(), repositories.DocumentFilter{})
	if err != nil {
		return err
	}
	for _, in := range indents {
		switch in.Status {
		case entities.IndentApproved:
			for _, it := range in.ApprovedItems() {
				positions.AddIncoming(it.SparePartID, in.LocationID, it.QuantityApproved)
			}
		case entities.IndentDraft, entities.IndentPendingApproval:
			for _, it := range in.Items {
				positions.AddIncoming(it.SparePartID, in.LocationID, it.QuantityRequested)
			}
		}
	}

	transfers, err := repositories.ListDocuments[*entities.StockTransfer](tx.Documents(), repositories.DocumentFilter{})
	if err != nil {
		return err
	}
	for _, st := range transfers {
		for _, it := range st.Items {
			switch st.Status {
			case entities.TransferDraft, entities.TransferPending:
				positions.AddIncoming(it.SparePartID, st.ToLocationID, it.QuantityRequested)
			case entities.TransferInTransit:
				positions.AddIncoming(it.SparePartID, st.ToLocationID, it.QuantitySent)
			}
		}
	}
	return nil
}

// ReplenishmentDocuments are the drafts raised from a plan
type ReplenishmentDocuments struct {
	Plan      *dto.ReplenishmentPlan    `json:"plan"`
	Indents   []*entities.Indent        `json:"indents"`
	Transfers []*entities.StockTransfer `json:"transfers"`
}

// RaiseReplenishment plans and, in the same transaction, raises one draft
// indent per location for the planned purchases and one draft transfer per
// source and destination pair for the planned transfers
func (s *Service) RaiseReplenishment(ctx context.Context, requestedBy string) (*ReplenishmentDocuments, error) {
	var out *ReplenishmentDocuments
	err := s.update(ctx, "raise replenishment", func(w *work) error {
		plan, err := s.plan(w.tx)
		if err != nil {
			return err
		}
		out = &ReplenishmentDocuments{Plan: plan}

		buys := make(map[string][]dto.IndentItemInput)
		for _, o := range plan.Buys() {
			buys[o.LocationID] = append(buys[o.LocationID], dto.IndentItemInput{
				SparePartID: o.SparePartID,
				Quantity:    o.Quantity,
				Remarks:     "replenishment",
			})
		}
		for _, loc := range sortedKeys(buys) {
			indent, err := w.createIndent(dto.IndentInput{
				LocationID:  loc,
				RequestedBy: requestedBy,
				Priority:    entities.PriorityHigh,
				Notes:       "Raised by replenishment planning",
				Items:       buys[loc],
			})
			if err != nil {
				return err
			}
			out.Indents = append(out.Indents, indent)
		}

		moves := make(map[[2]string][]dto.TransferItemInput)
		for _, o := range plan.Transfers() {
			k := [2]string{o.SourceLocationID, o.LocationID}
			moves[k] = append(moves[k], dto.TransferItemInput{SparePartID: o.SparePartID, Quantity: o.Quantity})
		}
		keys := make([][2]string, 0, len(moves))
		for k := range moves {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i][0] != keys[j][0] {
				return keys[i][0] < keys[j][0]
			}
			return keys[i][1] < keys[j][1]
		})
		for _, k := range keys {
			st, err := w.createTransfer(dto.StockTransferInput{
				FromLocationID: k[0],
				ToLocationID:   k[1],
				RequestedBy:    requestedBy,
				Notes:          "Raised by replenishment planning",
				Items:          moves[k],
			})
			if err != nil {
				return err
			}
			out.Transfers = append(out.Transfers, st)
		}
		return nil
	})
	return out, err
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
