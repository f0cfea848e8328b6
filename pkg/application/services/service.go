package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vsinha/spares/pkg/domain/entities"
	"github.com/vsinha/spares/pkg/domain/gst"
	"github.com/vsinha/spares/pkg/domain/repositories"
	"github.com/vsinha/spares/pkg/infrastructure/events"
	"github.com/vsinha/spares/pkg/infrastructure/logger"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Option configures a Service
type Option func(*Service)

// WithClock replaces time.Now
func WithClock(clock Clock) Option {
	return func(s *Service) { s.now = clock }
}

// WithPublisher sets where committed events go
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCompanyGSTIN sets the GSTIN used to decide inter-state supplies
func WithCompanyGSTIN(gstin string) Option {
	return func(s *Service) { s.companyGSTIN = gstin }
}

// WithDefaultGSTRate sets the rate used for parts without a valid rate
func WithDefaultGSTRate(rate gst.Rate) Option {
	return func(s *Service) { s.defaultRate = rate }
}

// WithRegistrar sets the e-invoice registrar
func WithRegistrar(r EInvoiceRegistrar) Option {
	return func(s *Service) { s.registrar = r }
}

// Service implements every inventory operation. Each write runs inside a
// single store transaction together with its stock ledger changes; events
// are published only after the transaction commits.
type Service struct {
	store        repositories.Store
	publisher    events.Publisher
	registrar    EInvoiceRegistrar
	now          Clock
	companyGSTIN string
	defaultRate  gst.Rate
	log          zerolog.Logger
}

// New creates a Service over store
func New(store repositories.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		publisher:   events.Discard{},
		now:         time.Now,
		defaultRate: 18,
		log:         logger.WithComponent("services"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registrar == nil {
		s.registrar = NewLocalRegistrar(s.companyGSTIN)
	}
	return s
}

// work is the state of one write transaction
type work struct {
	svc    *Service
	tx     repositories.Tx
	now    time.Time
	events []events.Event
}

func (s *Service) update(ctx context.Context, op string, fn func(w *work) error) error {
	var committed *work
	err := s.store.Update(ctx, func(tx repositories.Tx) error {
		w := &work{svc: s, tx: tx, now: s.now()}
		if err := fn(w); err != nil {
			return err
		}
		committed = w
		return nil
	})
	if err != nil {
		s.log.Debug().Err(err).Str("operation", op).Msg("Operation failed")
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(committed.events) > 0 {
		if err := s.publisher.Publish(committed.events...); err != nil {
			s.log.Error().Err(err).Str("operation", op).Msg("Failed to publish events")
		}
	}
	return nil
}

func (s *Service) view(ctx context.Context, fn func(tx repositories.Tx) error) error {
	return s.store.View(ctx, fn)
}

func (w *work) emit(e ...events.Event) {
	w.events = append(w.events, e...)
}

// header numbers a new document from its per-prefix yearly sequence
func (w *work) header(kind entities.DocumentKind, date time.Time, notes string) (entities.DocumentHeader, error) {
	if date.IsZero() {
		date = w.now
	}
	seq, err := w.tx.Sequences().Next(kind.Prefix(), date.Year())
	if err != nil {
		return entities.DocumentHeader{}, err
	}
	return entities.NewDocumentHeader(entities.FormatDocumentNumber(kind, date.Year(), seq), date, notes, w.now)
}

func (w *work) create(doc entities.Document) error {
	if err := w.tx.Documents().Save(doc); err != nil {
		return err
	}
	w.emit(events.Created(doc, w.now))
	return nil
}

// save persists doc and emits a transition event when its status moved away
// from `from`
func (w *work) save(doc entities.Document, from string) error {
	if err := w.tx.Documents().Save(doc); err != nil {
		return err
	}
	if doc.State() != from {
		w.emit(events.Transitioned(doc, from, w.now))
	}
	return nil
}

func (w *work) part(id string) (*entities.SparePart, error) {
	return w.tx.Parts().Get(id)
}

// optionalPart returns nil instead of a NotFoundError so that line contexts
// can report the missing part against the line
func (w *work) optionalPart(id string) (*entities.SparePart, error) {
	p, err := w.tx.Parts().Get(id)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

func (w *work) location(id string) (*entities.Location, error) {
	loc, err := w.tx.Locations().Get(id)
	if err != nil {
		return nil, err
	}
	if !loc.IsActive {
		return nil, entities.NewValidationError("location_id", loc.Code, "location is inactive")
	}
	return loc, nil
}

func (w *work) supplier(id string, want entities.SupplierType) (*entities.Supplier, error) {
	sup, err := w.tx.Suppliers().Get(id)
	if err != nil {
		return nil, err
	}
	if !sup.IsActive {
		return nil, entities.NewValidationError("supplier_id", sup.Code, "supplier is inactive")
	}
	if want != "" && sup.Type != want {
		return nil, entities.NewValidationError("supplier_id", sup.Code, fmt.Sprintf("expected a %s", want))
	}
	return sup, nil
}

// validateLine loads the line's part and checks it with ctx
func (w *work) validateLine(ctx entities.LineContext, line entities.PartLine) (*entities.SparePart, error) {
	part, err := w.optionalPart(line.SparePartID)
	if err != nil {
		return nil, err
	}
	if err := ctx.ValidateLine(part, line); err != nil {
		return nil, err
	}
	return part, nil
}

// rate returns the GST rate of a part. An active Tax master entry covering
// the part's HSN code must agree with it.
func (w *work) rate(part *entities.SparePart) (gst.Rate, error) {
	rate := part.GSTRate
	if !rate.Valid() {
		rate = w.svc.defaultRate
	}
	if part.HSNCode == "" {
		return rate, nil
	}
	taxes, err := w.tx.Taxes().List()
	if err != nil {
		return 0, err
	}
	for _, t := range taxes {
		if t.IsActive && t.CoversHSN(part.HSNCode) && t.Rate != rate {
			return 0, entities.NewValidationError("gst_rate", rate,
				fmt.Sprintf("HSN %s is taxed at %d%% in the tax master", part.HSNCode, int(t.Rate)))
		}
	}
	return rate, nil
}

// interState compares a party GSTIN with the company's. Unregistered parties
// and an unset company GSTIN are treated as intra-state.
func (s *Service) interState(partyGSTIN string) (bool, error) {
	if partyGSTIN == "" || s.companyGSTIN == "" {
		return false, nil
	}
	inter, err := gst.IsInterState(partyGSTIN, s.companyGSTIN)
	if err != nil {
		return false, entities.NewValidationError("gstin", partyGSTIN, err.Error())
	}
	return inter, nil
}
