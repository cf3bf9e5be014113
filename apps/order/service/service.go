package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"time"

	"order-system/apps/order/model"
	"order-system/apps/order/store"
	"order-system/pkg/events"
	"order-system/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type Options struct {
	DefaultPerPage int
	MaxPerPage     int
	Dates          model.DatePolicy
	Publisher      events.Publisher
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

// Service 订单资源服务：校验、持久化、发布事件
type Service struct {
	store          store.Store
	dates          model.DatePolicy
	defaultPerPage int
	maxPerPage     int
	publisher      events.Publisher
	metrics        *metrics.Metrics
	log            *slog.Logger
	tracer         trace.Tracer
}

func New(s store.Store, opts Options) *Service {
	svc := &Service{
		store:          s,
		dates:          opts.Dates,
		defaultPerPage: opts.DefaultPerPage,
		maxPerPage:     opts.MaxPerPage,
		publisher:      opts.Publisher,
		metrics:        opts.Metrics,
		log:            opts.Logger,
		tracer:         otel.Tracer("order-system/apps/order/service"),
	}
	if svc.defaultPerPage < 1 {
		svc.defaultPerPage = defaultPerPage
	}
	if svc.maxPerPage < 1 {
		svc.maxPerPage = maxPerPage
	}
	if svc.defaultPerPage > svc.maxPerPage {
		svc.defaultPerPage = svc.maxPerPage
	}
	if svc.publisher == nil {
		svc.publisher = events.Nop{}
	}
	if svc.log == nil {
		svc.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return svc
}

// ListParams are the raw listing inputs. Dates are ISO-8601 strings; empty
// means unbounded. A zero CustomerID disables the customer filter.
type ListParams struct {
	CustomerID int64
	StartDate  string
	EndDate    string
	Page       int
	PerPage    int
}

type PageResult struct {
	Items   []model.OrderHeader `json:"items"`
	Total   int64               `json:"total"`
	Page    int                 `json:"page"`
	Pages   int                 `json:"pages"`
	PerPage int                 `json:"per_page"`
}

// OrderSummary is a header with its details and aggregated totals.
type OrderSummary struct {
	Order       *model.OrderHeader  `json:"order"`
	Details     []model.OrderDetail `json:"details"`
	ItemCount   float64             `json:"item_count"`
	TotalAmount float64             `json:"total_amount"`
}

func (s *Service) ListHeaders(ctx context.Context, p ListParams) (result *PageResult, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListHeaders")
	defer func() { endSpan(span, err) }()

	filter := store.HeaderFilter{CustomerID: p.CustomerID}
	if filter.StartDate, err = parseBound("start_date", p.StartDate); err != nil {
		return nil, err
	}
	if filter.EndDate, err = parseBound("end_date", p.EndDate); err != nil {
		return nil, err
	}

	page := store.Page{Number: p.Page, PerPage: p.PerPage}
	if page.Number < 1 {
		page.Number = 1
	}
	if page.PerPage < 1 {
		page.PerPage = s.defaultPerPage
	}
	if page.PerPage > s.maxPerPage {
		page.PerPage = s.maxPerPage
	}
	span.SetAttributes(attribute.Int("page", page.Number), attribute.Int("per_page", page.PerPage))

	items, total, err := s.store.ListHeaders(ctx, filter, page)
	if err != nil {
		return nil, s.storeFailure("list headers", err)
	}

	return &PageResult{
		Items:   items,
		Total:   total,
		Page:    page.Number,
		Pages:   int(math.Ceil(float64(total) / float64(page.PerPage))),
		PerPage: page.PerPage,
	}, nil
}

func (s *Service) CountHeaders(ctx context.Context) (int64, error) {
	n, err := s.store.CountHeaders(ctx)
	if err != nil {
		return 0, s.storeFailure("count headers", err)
	}
	return n, nil
}

func (s *Service) GetHeader(ctx context.Context, id uint) (h *model.OrderHeader, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetHeader", trace.WithAttributes(attribute.Int64("order_id", int64(id))))
	defer func() { endSpan(span, err) }()

	h, err = s.store.GetHeader(ctx, id)
	if err != nil {
		return nil, s.translate("get header", ResourceOrder, id, err)
	}
	return h, nil
}

func (s *Service) CreateHeader(ctx context.Context, fields model.Fields) (h *model.OrderHeader, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateHeader")
	defer func() { endSpan(span, err) }()

	h, err = model.NewHeader(fields, s.dates)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateHeader(ctx, h); err != nil {
		return nil, s.storeFailure("create header", err)
	}

	s.log.InfoContext(ctx, "order created", "order_id", h.OrderID, "customer_id", h.CustomerID)
	s.emit(ctx, events.Event{Type: events.HeaderCreated, OrderID: h.OrderID, Data: h})
	return h, nil
}

// UpdateHeader applies a partial update. changed is false when fields held
// no recognized key; the stored header is then returned untouched.
func (s *Service) UpdateHeader(ctx context.Context, id uint, fields model.Fields) (h *model.OrderHeader, changed bool, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateHeader", trace.WithAttributes(attribute.Int64("order_id", int64(id))))
	defer func() { endSpan(span, err) }()

	h, err = s.store.GetHeader(ctx, id)
	if err != nil {
		return nil, false, s.translate("get header", ResourceOrder, id, err)
	}

	changed, err = h.ApplyUpdate(fields, s.dates)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return h, false, nil
	}

	if err := s.store.UpdateHeader(ctx, h); err != nil {
		return nil, false, s.translate("update header", ResourceOrder, id, err)
	}

	s.log.InfoContext(ctx, "order updated", "order_id", h.OrderID)
	s.emit(ctx, events.Event{Type: events.HeaderUpdated, OrderID: h.OrderID, Data: h})
	return h, true, nil
}

// DeleteHeader removes the header together with all of its details.
func (s *Service) DeleteHeader(ctx context.Context, id uint) (err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteHeader", trace.WithAttributes(attribute.Int64("order_id", int64(id))))
	defer func() { endSpan(span, err) }()

	if err := s.store.DeleteHeader(ctx, id); err != nil {
		return s.translate("delete header", ResourceOrder, id, err)
	}

	s.log.InfoContext(ctx, "order deleted", "order_id", id)
	s.emit(ctx, events.Event{Type: events.HeaderDeleted, OrderID: id})
	return nil
}

func (s *Service) ListDetails(ctx context.Context, orderID uint) (details []model.OrderDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.ListDetails", trace.WithAttributes(attribute.Int64("order_id", int64(orderID))))
	defer func() { endSpan(span, err) }()

	if _, err := s.store.GetHeader(ctx, orderID); err != nil {
		return nil, s.translate("get header", ResourceOrder, orderID, err)
	}
	details, err = s.store.ListDetails(ctx, orderID)
	if err != nil {
		return nil, s.storeFailure("list details", err)
	}
	return details, nil
}

func (s *Service) GetDetail(ctx context.Context, id uint) (d *model.OrderDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.GetDetail", trace.WithAttributes(attribute.Int64("detail_id", int64(id))))
	defer func() { endSpan(span, err) }()

	d, err = s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, s.translate("get detail", ResourceDetail, id, err)
	}
	return d, nil
}

// CreateDetail adds a line item under orderID. The header must exist.
func (s *Service) CreateDetail(ctx context.Context, orderID uint, fields model.Fields) (d *model.OrderDetail, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateDetail", trace.WithAttributes(attribute.Int64("order_id", int64(orderID))))
	defer func() { endSpan(span, err) }()

	if _, err := s.store.GetHeader(ctx, orderID); err != nil {
		return nil, s.translate("get header", ResourceOrder, orderID, err)
	}

	d, err = model.NewDetail(orderID, fields)
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateDetail(ctx, d); err != nil {
		// the header may have been deleted in between
		return nil, s.translate("create detail", ResourceOrder, orderID, err)
	}

	s.log.InfoContext(ctx, "order detail created", "order_id", orderID, "detail_id", d.DetailID, "row_total", d.RowTotal)
	s.emit(ctx, events.Event{Type: events.DetailCreated, OrderID: orderID, DetailID: d.DetailID, Data: d})
	return d, nil
}

// UpdateDetail applies a partial update; row_total is recomputed only when
// quantity or unit_rate is supplied.
func (s *Service) UpdateDetail(ctx context.Context, id uint, fields model.Fields) (d *model.OrderDetail, changed bool, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.UpdateDetail", trace.WithAttributes(attribute.Int64("detail_id", int64(id))))
	defer func() { endSpan(span, err) }()

	d, err = s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, false, s.translate("get detail", ResourceDetail, id, err)
	}

	changed, err = d.ApplyUpdate(fields)
	if err != nil {
		return nil, false, err
	}
	if !changed {
		return d, false, nil
	}

	if err := s.store.UpdateDetail(ctx, d); err != nil {
		return nil, false, s.translate("update detail", ResourceDetail, id, err)
	}

	s.log.InfoContext(ctx, "order detail updated", "order_id", d.OrderID, "detail_id", d.DetailID, "row_total", d.RowTotal)
	s.emit(ctx, events.Event{Type: events.DetailUpdated, OrderID: d.OrderID, DetailID: d.DetailID, Data: d})
	return d, true, nil
}

func (s *Service) DeleteDetail(ctx context.Context, id uint) (err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.DeleteDetail", trace.WithAttributes(attribute.Int64("detail_id", int64(id))))
	defer func() { endSpan(span, err) }()

	d, err := s.store.GetDetail(ctx, id)
	if err != nil {
		return s.translate("get detail", ResourceDetail, id, err)
	}
	if err := s.store.DeleteDetail(ctx, id); err != nil {
		return s.translate("delete detail", ResourceDetail, id, err)
	}

	s.log.InfoContext(ctx, "order detail deleted", "order_id", d.OrderID, "detail_id", id)
	s.emit(ctx, events.Event{Type: events.DetailDeleted, OrderID: d.OrderID, DetailID: id})
	return nil
}

// Summary returns the header, its details, Σ quantity and Σ row_total.
func (s *Service) Summary(ctx context.Context, orderID uint) (sum *OrderSummary, err error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.Summary", trace.WithAttributes(attribute.Int64("order_id", int64(orderID))))
	defer func() { endSpan(span, err) }()

	h, err := s.store.GetHeader(ctx, orderID)
	if err != nil {
		return nil, s.translate("get header", ResourceOrder, orderID, err)
	}
	details, err := s.store.ListDetails(ctx, orderID)
	if err != nil {
		return nil, s.storeFailure("list details", err)
	}

	sum = &OrderSummary{Order: h, Details: details}
	for _, d := range details {
		sum.ItemCount += d.Quantity
		sum.TotalAmount += d.RowTotal
	}
	return sum, nil
}

// emit publishes e after a committed write. A failed publish is logged only.
func (s *Service) emit(ctx context.Context, e events.Event) {
	s.metrics.ObserveMutation(e.Type)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "publish event failed", "type", e.Type, "order_id", e.OrderID, "error", err)
	}
}

// translate maps store.ErrNotFound to a NotFoundError for resource/id and
// anything else to a StoreError.
func (s *Service) translate(op, resource string, id uint, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Resource: resource, ID: id}
	}
	return s.storeFailure(op, err)
}

func (s *Service) storeFailure(op string, err error) error {
	s.log.Error("store failure", "op", op, "error", err)
	return &StoreError{Op: op, Err: err}
}

func parseBound(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := model.ParseTimestamp(raw)
	if err != nil {
		return nil, &model.ValidationError{
			Field:   name,
			Message: "Invalid " + name + " format. Use ISO format (YYYY-MM-DDTHH:MM:SS)",
		}
	}
	return &t, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
