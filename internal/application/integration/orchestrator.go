package integration

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/erp/storesync/internal/domain/integration"
	"github.com/erp/storesync/internal/domain/partner"
	"github.com/erp/storesync/internal/domain/reference"
	"github.com/erp/storesync/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/erp/storesync/internal/application/integration"

// Pass lock scopes. Import and export use separate scopes so that both
// directions of a channel can run at the same time.
const (
	LockScopeImport    = "import"
	LockScopeExport    = "export"
	LockScopeReference = "reference"
)

// PassRecorder receives the outcome of every pass
type PassRecorder interface {
	ObservePass(result *integration.PassResult, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObservePass(*integration.PassResult, error) {}

// SyncOrchestrator runs the sync operations of a channel
type SyncOrchestrator struct {
	tx       integration.TransactionScope
	remotes  integration.RemoteClientFactory
	locker   integration.PassLocker
	resolver *RemoteResolver
	parties  *PartyReconciler
	catalog  *CatalogReconciler
	states   *OrderStateMachine
	windows  *SyncWindowTracker
	recorder PassRecorder
	tracer   trace.Tracer
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a SyncOrchestrator
type Option func(*SyncOrchestrator)

// WithRecorder reports pass outcomes to r
func WithRecorder(r PassRecorder) Option {
	return func(o *SyncOrchestrator) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithTracer traces every pass as one span on t
func WithTracer(t trace.Tracer) Option {
	return func(o *SyncOrchestrator) {
		if t != nil {
			o.tracer = t
		}
	}
}

// WithClock replaces time.Now for cursors and fallback sale dates
func WithClock(now func() time.Time) Option {
	return func(o *SyncOrchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// NewSyncOrchestrator creates a SyncOrchestrator
func NewSyncOrchestrator(
	tx integration.TransactionScope,
	remotes integration.RemoteClientFactory,
	locker integration.PassLocker,
	logger *zap.Logger,
	opts ...Option,
) *SyncOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &SyncOrchestrator{
		tx:       tx,
		remotes:  remotes,
		locker:   locker,
		recorder: nopRecorder{},
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.resolver = NewRemoteResolver(logger)
	o.parties = NewPartyReconciler(o.resolver, logger)
	o.catalog = NewCatalogReconciler(o.resolver, logger)
	o.states = NewOrderStateMachine(logger)
	o.windows = NewSyncWindowTracker(o.now)
	return o
}

// ---------------------------------------------------------------------------
// Operations
// ---------------------------------------------------------------------------

// RunImport imports the orders updated on the remote store since the last
// import. Each order is committed on its own.
func (o *SyncOrchestrator) RunImport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return o.run(ctx, channelID, pass{
		op:           integration.OperationImportOrders,
		lockScope:    LockScopeImport,
		prerequisite: o.requireOrderStates,
		body:         o.importOrders,
	})
}

// RunExport pushes the status of sales changed since the last export
func (o *SyncOrchestrator) RunExport(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return o.run(ctx, channelID, pass{
		op:           integration.OperationExportOrders,
		lockScope:    LockScopeExport,
		prerequisite: o.requireOrderStates,
		body:         o.exportOrders,
	})
}

// ImportLanguages links the remote languages to local ones
func (o *SyncOrchestrator) ImportLanguages(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return o.run(ctx, channelID, pass{
		op:        integration.OperationImportLanguages,
		lockScope: LockScopeReference,
		body:      o.importLanguages,
	})
}

// ImportOrderStates creates a mapping for every remote order state not yet
// mapped. Languages must have been imported.
func (o *SyncOrchestrator) ImportOrderStates(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return o.run(ctx, channelID, pass{
		op:           integration.OperationImportOrderStates,
		lockScope:    LockScopeReference,
		prerequisite: o.requireLanguages,
		body:         o.importOrderStates,
	})
}

// ImportReferenceData imports languages, then order states
func (o *SyncOrchestrator) ImportReferenceData(ctx context.Context, channelID uuid.UUID) (*integration.PassResult, error) {
	return o.run(ctx, channelID, pass{
		op:        integration.OperationImportReferenceData,
		lockScope: LockScopeReference,
		body: func(ctx context.Context, scope Scope, result *integration.PassResult) error {
			if err := o.importLanguages(ctx, scope, result); err != nil {
				return err
			}
			if err := o.requireLanguages(ctx, scope.Channel); err != nil {
				return err
			}
			return o.importOrderStates(ctx, scope, result)
		},
	})
}

// TestConnection checks the channel settings and lists the remote shops
func (o *SyncOrchestrator) TestConnection(ctx context.Context, channelID uuid.UUID) error {
	channel, err := o.loadChannel(ctx, channelID)
	if err != nil {
		return err
	}
	remote, err := o.remotes.ClientFor(channel)
	if err != nil {
		return err
	}
	shops, err := remote.List(ctx, integration.ResourceShops, nil)
	if err != nil {
		o.logger.Warn("connection test failed",
			zap.String("channel_id", channel.ID.String()),
			zap.Error(err),
		)
		return err
	}
	o.logger.Info("connection test succeeded",
		zap.String("channel_id", channel.ID.String()),
		zap.Int("shops", len(shops)),
	)
	return nil
}

// ---------------------------------------------------------------------------
// Pass skeleton
// ---------------------------------------------------------------------------

type pass struct {
	op           integration.Operation
	lockScope    string
	prerequisite func(ctx context.Context, channel *integration.Channel) error
	body         func(ctx context.Context, scope Scope, result *integration.PassResult) error
}

// run validates the channel and checks prerequisites before any remote
// call, then runs the pass body under the pass lock.
func (o *SyncOrchestrator) run(ctx context.Context, channelID uuid.UUID, p pass) (result *integration.PassResult, err error) {
	result = integration.NewPassResult(channelID, p.op)
	log := o.logger.With(
		zap.String("channel_id", channelID.String()),
		zap.String("operation", string(p.op)),
	)
	ctx, span := o.tracer.Start(ctx, "sync."+string(p.op),
		trace.WithAttributes(attribute.String("sync.channel_id", channelID.String())))
	defer func() {
		result.Finish()
		o.recorder.ObservePass(result, err)
		span.SetAttributes(
			attribute.Int("sync.created", result.Created),
			attribute.Int("sync.updated", result.Updated),
			attribute.Int("sync.skipped", result.Skipped),
			attribute.Int("sync.exceptions", len(result.Exceptions)),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		fields := []zap.Field{
			zap.Int("created", result.Created),
			zap.Int("updated", result.Updated),
			zap.Int("skipped", result.Skipped),
			zap.Int("exceptions", len(result.Exceptions)),
			zap.Duration("duration", result.FinishedAt.Sub(result.StartedAt)),
		}
		if err != nil {
			kind, _ := integration.KindOf(err)
			log.Error("pass aborted", append(fields, zap.String("kind", string(kind)), zap.Error(err))...)
			return
		}
		log.Info("pass finished", fields...)
	}()

	channel, err := o.loadChannel(ctx, channelID)
	if err != nil {
		return result, err
	}
	if !channel.Enabled {
		return result, integration.ErrChannelDisabled
	}
	if p.prerequisite != nil {
		if err := p.prerequisite(ctx, channel); err != nil {
			return result, err
		}
	}

	release, err := o.locker.Acquire(ctx, integration.PassKey{ChannelID: channel.ID, Scope: p.lockScope})
	if err != nil {
		return result, err
	}
	defer release()

	// the previous holder may have moved the cursors
	channel, err = o.loadChannel(ctx, channelID)
	if err != nil {
		return result, err
	}
	if !channel.Enabled {
		return result, integration.ErrChannelDisabled
	}
	remote, err := o.remotes.ClientFor(channel)
	if err != nil {
		return result, err
	}

	scope := Scope{Channel: channel, Remote: remote, Repos: o.tx.Repositories()}
	err = p.body(ctx, scope, result)
	return result, err
}

func (o *SyncOrchestrator) loadChannel(ctx context.Context, channelID uuid.UUID) (*integration.Channel, error) {
	channel, err := o.tx.Repositories().Channels().FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := channel.Validate(); err != nil {
		return nil, err
	}
	return channel, nil
}

func (o *SyncOrchestrator) requireOrderStates(ctx context.Context, channel *integration.Channel) error {
	n, err := o.tx.Repositories().StateMappings().Count(ctx, channel.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return integration.ErrOrderStatesNotImported
	}
	return nil
}

func (o *SyncOrchestrator) requireLanguages(ctx context.Context, channel *integration.Channel) error {
	n, err := o.tx.Repositories().Links().CountByKind(ctx, integration.LinkLanguage, channel.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return integration.ErrLanguagesNotImported
	}
	return nil
}

type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeCreated
	outcomeUpdated
)

func tally(result *integration.PassResult, out outcome) {
	switch out {
	case outcomeCreated:
		result.Created++
	case outcomeUpdated:
		result.Updated++
	default:
		result.Skipped++
	}
}

// settle counts a record's outcome, or collects its error when the error
// only concerns that record. Any other error is returned to abort the pass.
func (o *SyncOrchestrator) settle(result *integration.PassResult, resource integration.Resource, remoteID int64, out outcome, err error) error {
	if err == nil {
		tally(result, out)
		return nil
	}
	if !integration.IsRecordScoped(err) {
		return err
	}
	kind, _ := integration.KindOf(err)
	o.logger.Warn("record skipped",
		zap.String("channel_id", result.ChannelID.String()),
		zap.String("resource", string(resource)),
		zap.Int64("remote_id", remoteID),
		zap.String("kind", string(kind)),
		zap.Error(err),
	)
	result.AddException(resource, remoteID, err)
	return nil
}

// ---------------------------------------------------------------------------
// Order import
// ---------------------------------------------------------------------------

func (o *SyncOrchestrator) importOrders(ctx context.Context, scope Scope, result *integration.PassResult) error {
	window, err := o.windows.Open(ctx, scope.Repos.Channels(), scope.Channel, integration.DirectionImport)
	if err != nil {
		return err
	}
	records, err := scope.Remote.List(ctx, integration.ResourceOrders, integration.WindowFilter(window))
	if err != nil {
		return err
	}
	from, to := window.RemoteBounds()
	o.logger.Info("importing orders",
		zap.String("channel_id", scope.ChannelID().String()),
		zap.String("direction", string(integration.DirectionImport)),
		zap.String("from", from),
		zap.String("to", to),
		zap.Int("orders", len(records)),
	)

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := o.importOrder(ctx, scope, rec)
		if err := o.settle(result, integration.ResourceOrders, rec.ID(), out, err); err != nil {
			return err
		}
	}
	return nil
}

// importOrder creates or refreshes the sale of one remote order in its own
// transaction. A sale whose total disagrees with the remote one is kept in
// draft and reported as an exception rather than counted.
func (o *SyncOrchestrator) importOrder(ctx context.Context, scope Scope, rec integration.RemoteRecord) (outcome, error) {
	order, err := integration.ParseOrder(rec)
	if err != nil {
		return outcomeSkipped, err
	}

	var out outcome
	var mismatch error
	err = o.tx.Execute(ctx, func(repos integration.Repositories) error {
		txScope := Scope{Channel: scope.Channel, Remote: scope.Remote, Repos: repos}
		link, err := txScope.findLink(ctx, integration.LinkSale, order.ID)
		if err != nil {
			return err
		}
		if link != nil {
			out, err = o.refreshOrder(ctx, txScope, order, link)
			return err
		}
		out = outcomeCreated
		mismatch, err = o.createSale(ctx, txScope, order)
		return err
	})
	if err != nil {
		return outcomeSkipped, err
	}
	if mismatch != nil {
		return outcomeSkipped, mismatch
	}
	return out, nil
}

func (o *SyncOrchestrator) refreshOrder(ctx context.Context, scope Scope, order *integration.RemoteOrder, link *integration.RemoteLink) (outcome, error) {
	sale, err := scope.Repos.Sales().FindByID(ctx, link.LocalID)
	if err != nil {
		return outcomeSkipped, err
	}
	if sale.HasExceptions() || sale.RemoteStateID == order.CurrentState {
		return outcomeSkipped, nil
	}
	mapping, err := o.stateMapping(ctx, scope, order.CurrentState)
	if err != nil {
		return outcomeSkipped, err
	}
	changed, err := o.states.Apply(ctx, scope, sale, mapping)
	if err != nil {
		return outcomeSkipped, err
	}
	if changed {
		return outcomeUpdated, nil
	}
	return outcomeSkipped, nil
}

// createSale builds, links and progresses the sale of a new order. The
// returned mismatch is set when the sale was kept in draft.
func (o *SyncOrchestrator) createSale(ctx context.Context, scope Scope, order *integration.RemoteOrder) (mismatch error, err error) {
	mapping, err := o.stateMapping(ctx, scope, order.CurrentState)
	if err != nil {
		return nil, err
	}

	customerRec, err := o.resolver.Fetch(ctx, scope, integration.ResourceCustomers, order.CustomerID)
	if err != nil {
		return nil, err
	}
	customer, err := integration.ParseCustomer(customerRec)
	if err != nil {
		return nil, err
	}
	party, err := o.parties.FindOrCreateParty(ctx, scope, customer)
	if err != nil {
		return nil, err
	}
	invoiceAddress, err := o.orderAddress(ctx, scope, party, order.InvoiceAddressID)
	if err != nil {
		return nil, err
	}
	shipmentAddress := invoiceAddress
	if order.DeliveryAddressID != order.InvoiceAddressID {
		if shipmentAddress, err = o.orderAddress(ctx, scope, party, order.DeliveryAddressID); err != nil {
			return nil, err
		}
	}
	currency, err := o.resolver.ResolveCurrency(ctx, scope, order.CurrencyID)
	if err != nil {
		return nil, err
	}

	ref := order.Reference
	if ref == "" {
		ref = strconv.FormatInt(order.ID, 10)
	}
	sale, err := trade.NewSale(scope.ChannelID(), party.ID, invoiceAddress.ID, shipmentAddress.ID,
		currency.ID, currency.Digits, ref, o.saleDate(scope.Channel, order))
	if err != nil {
		return nil, err
	}
	if err := o.addLines(ctx, scope, sale, order); err != nil {
		return nil, err
	}

	if err := scope.Repos.Sales().Create(ctx, sale); err != nil {
		return nil, err
	}
	if err := scope.link(ctx, integration.LinkSale, order.ID, sale.ID); err != nil {
		return nil, err
	}

	if !sale.TotalMatches(order.TotalPaidTaxExcl) {
		syncErr := integration.TotalMismatchError(sale.Reference,
			sale.TotalAmount.StringFixed(sale.Digits),
			order.TotalPaidTaxExcl.StringFixed(sale.Digits))
		exc := sale.AddException(string(syncErr.Kind), syncErr.Message)
		if err := scope.Repos.Sales().AddException(ctx, exc); err != nil {
			return nil, err
		}
		return syncErr, nil
	}

	if _, err := o.states.Apply(ctx, scope, sale, mapping); err != nil {
		return nil, err
	}
	return nil, nil
}

// addLines adds one line per order row, then the shipping and discount
// lines when the order declares them.
func (o *SyncOrchestrator) addLines(ctx context.Context, scope Scope, sale *trade.Sale, order *integration.RemoteOrder) error {
	for _, row := range order.Rows {
		if row.Quantity.IsZero() {
			continue
		}
		if row.Quantity.IsNegative() {
			return integration.MalformedRecordError(integration.ResourceOrders, order.ID, "negative quantity")
		}
		variant, err := o.catalog.ResolveOrderRow(ctx, scope, row.ProductID, row.CombinationID)
		if err != nil {
			return err
		}
		if _, err := sale.AddLine(trade.LineKindProduct, &variant.ID, row.Name, row.Quantity, row.UnitPriceTaxExcl); err != nil {
			return err
		}
	}

	one := decimal.NewFromInt(1)
	if !order.TotalShippingTaxExcl.IsZero() {
		if _, err := sale.AddLine(trade.LineKindShipping, scope.Channel.ShippingVariantID, "Shipping", one, order.TotalShippingTaxExcl); err != nil {
			return err
		}
	}
	if !order.TotalDiscountsTaxExcl.IsZero() {
		if _, err := sale.AddLine(trade.LineKindDiscount, nil, "Discount", one, order.TotalDiscountsTaxExcl.Neg()); err != nil {
			return err
		}
	}
	return nil
}

func (o *SyncOrchestrator) orderAddress(ctx context.Context, scope Scope, party *partner.Party, addressID int64) (*partner.Address, error) {
	rec, err := o.resolver.Fetch(ctx, scope, integration.ResourceAddresses, addressID)
	if err != nil {
		return nil, err
	}
	return o.parties.FindOrCreateAddress(ctx, scope, party, integration.ParseAddress(rec))
}

func (o *SyncOrchestrator) stateMapping(ctx context.Context, scope Scope, remoteStateID int64) (*integration.RemoteStateMapping, error) {
	mapping, err := scope.Repos.StateMappings().FindByRemoteState(ctx, scope.ChannelID(), remoteStateID)
	if errors.Is(err, integration.ErrStateMappingNotFound) {
		return nil, integration.OrderStateNotImportedError(remoteStateID)
	}
	return mapping, err
}

// saleDate reads the order's creation date in the channel's time zone
func (o *SyncOrchestrator) saleDate(channel *integration.Channel, order *integration.RemoteOrder) time.Time {
	loc, err := channel.Location()
	if err == nil {
		if t, err := time.ParseInLocation(integration.RemoteDateLayout, order.DateAdd, loc); err == nil {
			return t.UTC()
		}
	}
	return o.now().UTC()
}

// ---------------------------------------------------------------------------
// Order export
// ---------------------------------------------------------------------------

func (o *SyncOrchestrator) exportOrders(ctx context.Context, scope Scope, result *integration.PassResult) error {
	window, err := o.windows.Open(ctx, scope.Repos.Channels(), scope.Channel, integration.DirectionExport)
	if err != nil {
		return err
	}
	sales, err := scope.Repos.Sales().ListChangedSince(ctx, scope.ChannelID(), window.From)
	if err != nil {
		return err
	}
	o.logger.Info("exporting order states",
		zap.String("channel_id", scope.ChannelID().String()),
		zap.String("direction", string(integration.DirectionExport)),
		zap.Int("sales", len(sales)),
	)

	for i := range sales {
		if err := ctx.Err(); err != nil {
			return err
		}
		remoteID, out, err := o.exportSale(ctx, scope, &sales[i])
		if err := o.settle(result, integration.ResourceOrders, remoteID, out, err); err != nil {
			return err
		}
	}
	return nil
}

// exportSale pushes the remote state matching the sale's status. Nothing is
// pushed when no remote state maps to the status, when that state was
// already pushed, or when the remote order is already in a state of that
// status.
func (o *SyncOrchestrator) exportSale(ctx context.Context, scope Scope, sale *trade.Sale) (int64, outcome, error) {
	link, err := scope.Repos.Links().FindByLocal(ctx, integration.LinkSale, scope.ChannelID(), sale.ID)
	if errors.Is(err, integration.ErrLinkNotFound) {
		return 0, outcomeSkipped, nil
	}
	if err != nil {
		return 0, outcomeSkipped, err
	}

	shipments, err := scope.Repos.Shipments().ListBySale(ctx, sale.ID)
	if err != nil {
		return link.RemoteID, outcomeSkipped, err
	}
	status, ok := sale.Status(shipments)
	if !ok {
		return link.RemoteID, outcomeSkipped, nil
	}
	mapping, found, err := o.states.ReverseLookup(ctx, scope, status)
	if err != nil || !found {
		return link.RemoteID, outcomeSkipped, err
	}
	if sale.ExportedStateID == mapping.RemoteStateID {
		return link.RemoteID, outcomeSkipped, nil
	}
	if sale.RemoteStateID != 0 {
		current, err := scope.Repos.StateMappings().FindByRemoteState(ctx, scope.ChannelID(), sale.RemoteStateID)
		if err != nil && !errors.Is(err, integration.ErrStateMappingNotFound) {
			return link.RemoteID, outcomeSkipped, err
		}
		if current != nil && current.LocalStatus == status {
			return link.RemoteID, outcomeSkipped, nil
		}
	}

	rec, err := scope.Remote.Get(ctx, integration.ResourceOrders, link.RemoteID)
	if err != nil {
		return link.RemoteID, outcomeSkipped, err
	}
	payload := make(integration.RemoteRecord, len(rec)+1)
	for k, v := range rec {
		payload[k] = v
	}
	payload["current_state"] = mapping.RemoteStateID
	if _, err := scope.Remote.Update(ctx, integration.ResourceOrders, link.RemoteID, payload); err != nil {
		return link.RemoteID, outcomeSkipped, err
	}
	if err := scope.Repos.Sales().RecordExportedState(ctx, sale.ID, mapping.RemoteStateID); err != nil {
		return link.RemoteID, outcomeSkipped, err
	}

	o.logger.Debug("order state exported",
		zap.String("channel_id", scope.ChannelID().String()),
		zap.Int64("remote_id", link.RemoteID),
		zap.String("status", string(status)),
		zap.Int64("remote_state_id", mapping.RemoteStateID),
	)
	return link.RemoteID, outcomeUpdated, nil
}

// ---------------------------------------------------------------------------
// Reference data
// ---------------------------------------------------------------------------

func (o *SyncOrchestrator) importLanguages(ctx context.Context, scope Scope, result *integration.PassResult) error {
	records, err := scope.Remote.List(ctx, integration.ResourceLanguages, nil)
	if err != nil {
		return err
	}
	locals, err := scope.Repos.References().ListLanguages(ctx)
	if err != nil {
		return err
	}

	for _, rec := range records {
		remote := integration.ParseLanguage(rec)
		out, err := o.linkLanguage(ctx, scope, remote, locals)
		if err := o.settle(result, integration.ResourceLanguages, remote.ID, out, err); err != nil {
			return err
		}
	}
	return nil
}

func (o *SyncOrchestrator) linkLanguage(ctx context.Context, scope Scope, remote *integration.RemoteLanguage, locals []reference.Language) (outcome, error) {
	link, err := scope.findLink(ctx, integration.LinkLanguage, remote.ID)
	if err != nil || link != nil {
		return outcomeSkipped, err
	}
	tag := remote.Tag()
	local, ok := integration.MatchLanguage(tag, locals)
	if !ok {
		return outcomeSkipped, integration.LanguageNotFoundError(tag)
	}
	newLink, err := integration.NewRemoteLink(integration.LinkLanguage, scope.ChannelID(), remote.ID, local.ID)
	if err != nil {
		return outcomeSkipped, integration.MalformedRecordError(integration.ResourceLanguages, remote.ID, "missing id")
	}
	inserted, err := scope.Repos.Links().Insert(ctx, newLink)
	if err != nil || !inserted {
		return outcomeSkipped, err
	}
	return outcomeCreated, nil
}

func (o *SyncOrchestrator) importOrderStates(ctx context.Context, scope Scope, result *integration.PassResult) error {
	languages, err := o.resolver.ChannelLanguages(ctx, scope)
	if err != nil {
		return err
	}
	records, err := scope.Remote.List(ctx, integration.ResourceOrderStates, nil)
	if err != nil {
		return err
	}

	for _, rec := range records {
		state := integration.ParseOrderState(rec)
		out, err := o.mapOrderState(ctx, scope, state, languages)
		if err := o.settle(result, integration.ResourceOrderStates, state.ID, out, err); err != nil {
			return err
		}
	}
	return nil
}

// mapOrderState creates the mapping of a remote state from its names in
// the linked languages; the English name drives the default status.
func (o *SyncOrchestrator) mapOrderState(ctx context.Context, scope Scope, state *integration.RemoteOrderState, languages map[int64]integration.ChannelLanguage) (outcome, error) {
	_, err := scope.Repos.StateMappings().FindByRemoteState(ctx, scope.ChannelID(), state.ID)
	if err == nil {
		return outcomeSkipped, nil
	}
	if !errors.Is(err, integration.ErrStateMappingNotFound) {
		return outcomeSkipped, err
	}

	names := make(map[string]string, len(state.Name))
	var english string
	for _, v := range state.Name {
		lang, ok := languages[v.LanguageID]
		if !ok {
			continue
		}
		if _, dup := names[lang.Code]; dup {
			continue
		}
		names[lang.Code] = v.Value
		if english == "" && integration.IsEnglish(lang.Code) {
			english = v.Value
		}
	}

	mapping, err := integration.NewRemoteStateMapping(scope.ChannelID(), state.ID, names, english)
	if err != nil {
		return outcomeSkipped, integration.MalformedRecordError(integration.ResourceOrderStates, state.ID, "missing id")
	}
	inserted, err := scope.Repos.StateMappings().Create(ctx, mapping)
	if err != nil || !inserted {
		return outcomeSkipped, err
	}
	return outcomeCreated, nil
}
