package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/notify"
	"nextmove-cargo/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database shared by the fake repositories.
type memStore struct {
	mu            sync.Mutex
	rfqs          map[uuid.UUID]model.RFQ
	offers        map[uuid.UUID]model.Offer
	shipments     map[uuid.UUID]model.Shipment
	profiles      map[uuid.UUID]model.Profile
	pods          map[uuid.UUID]model.POD
	sessions      map[uuid.UUID]model.POSSession
	coupons       map[uuid.UUID]model.Coupon
	transactions  map[uuid.UUID]model.Transaction
	notifications []model.Notification
	audits        []model.AuditLog

	failShipmentCreate error
	failProfileLookup  error
}

func newMemStore() *memStore {
	return &memStore{
		rfqs:         map[uuid.UUID]model.RFQ{},
		offers:       map[uuid.UUID]model.Offer{},
		shipments:    map[uuid.UUID]model.Shipment{},
		profiles:     map[uuid.UUID]model.Profile{},
		pods:         map[uuid.UUID]model.POD{},
		sessions:     map[uuid.UUID]model.POSSession{},
		coupons:      map[uuid.UUID]model.Coupon{},
		transactions: map[uuid.UUID]model.Transaction{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memSnapshot struct {
	rfqs          map[uuid.UUID]model.RFQ
	offers        map[uuid.UUID]model.Offer
	shipments     map[uuid.UUID]model.Shipment
	pods          map[uuid.UUID]model.POD
	sessions      map[uuid.UUID]model.POSSession
	coupons       map[uuid.UUID]model.Coupon
	transactions  map[uuid.UUID]model.Transaction
	notifications []model.Notification
	audits        []model.AuditLog
}

func (m *memStore) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memSnapshot{
		rfqs:          copyMap(m.rfqs),
		offers:        copyMap(m.offers),
		shipments:     copyMap(m.shipments),
		pods:          copyMap(m.pods),
		sessions:      copyMap(m.sessions),
		coupons:       copyMap(m.coupons),
		transactions:  copyMap(m.transactions),
		notifications: append([]model.Notification(nil), m.notifications...),
		audits:        append([]model.AuditLog(nil), m.audits...),
	}
}

func (m *memStore) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rfqs, m.offers, m.shipments, m.pods = s.rfqs, s.offers, s.shipments, s.pods
	m.sessions, m.coupons, m.transactions = s.sessions, s.coupons, s.transactions
	m.notifications, m.audits = s.notifications, s.audits
}

// fakeTxManager restores the store when the unit of work fails.
// Units of work are serialized, standing in for row locks.
type fakeTxManager struct {
	mu    sync.Mutex
	store *memStore
	calls int
}

func (f *fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	snap := f.store.snapshot()
	if err := fn(ctx); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- rfqs ---

type fakeRFQRepo struct{ s *memStore }

func (r fakeRFQRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rfq, ok := r.s.rfqs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &rfq, nil
}

func (r fakeRFQRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	return r.FindByID(ctx, id)
}

func (r fakeRFQRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rfq, ok := r.s.rfqs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	rfq.Status = status
	r.s.rfqs[id] = rfq
	return nil
}

// --- offers ---

type fakeOfferRepo struct{ s *memStore }

func (r fakeOfferRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	offer, ok := r.s.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if p, ok := r.s.profiles[offer.ForwarderID]; ok {
		offer.Forwarder = &p
	}
	if rfq, ok := r.s.rfqs[offer.RFQID]; ok {
		offer.RFQ = &rfq
	}
	return &offer, nil
}

func (r fakeOfferRepo) ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Offer
	for _, o := range r.s.offers {
		if o.RFQID == rfqID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r fakeOfferRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	r.s.offers[id] = o
	return nil
}

func (r fakeOfferRepo) RejectPendingSiblings(ctx context.Context, rfqID, keepID uuid.UUID, reason string) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var forwarders []uuid.UUID
	for id, o := range r.s.offers {
		if o.RFQID == rfqID && id != keepID && o.Status == model.OfferStatusPending {
			o.Status = model.OfferStatusRejected
			o.RejectionReason = reason
			r.s.offers[id] = o
			forwarders = append(forwarders, o.ForwarderID)
		}
	}
	return forwarders, nil
}

// --- shipments ---

type fakeShipmentRepo struct{ s *memStore }

func (r fakeShipmentRepo) Create(ctx context.Context, sh *model.Shipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failShipmentCreate != nil {
		return r.s.failShipmentCreate
	}
	for _, existing := range r.s.shipments {
		if existing.RFQID == sh.RFQID || existing.TrackingNumber == sh.TrackingNumber || existing.OfferID == sh.OfferID {
			return gorm.ErrDuplicatedKey
		}
	}
	ensureID(&sh.ID)
	sh.CreatedAt = time.Now()
	r.s.shipments[sh.ID] = *sh
	return nil
}

func (r fakeShipmentRepo) find(match func(model.Shipment) bool) (*model.Shipment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sh := range r.s.shipments {
		if match(sh) {
			found := sh
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeShipmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shipment, error) {
	return r.find(func(sh model.Shipment) bool { return sh.ID == id })
}

func (r fakeShipmentRepo) FindByRFQID(ctx context.Context, rfqID uuid.UUID) (*model.Shipment, error) {
	return r.find(func(sh model.Shipment) bool { return sh.RFQID == rfqID })
}

func (r fakeShipmentRepo) FindByTrackingNumber(ctx context.Context, tn string) (*model.Shipment, error) {
	return r.find(func(sh model.Shipment) bool { return sh.TrackingNumber == tn })
}

func (r fakeShipmentRepo) List(ctx context.Context, f repository.ShipmentFilter) ([]model.Shipment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Shipment
	for _, sh := range r.s.shipments {
		if f.ClientID != nil && sh.ClientID != *f.ClientID {
			continue
		}
		if f.ForwarderID != nil && sh.ForwarderID != *f.ForwarderID {
			continue
		}
		if f.Status != "" && sh.Status != f.Status {
			continue
		}
		out = append(out, sh)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TrackingNumber < out[j].TrackingNumber })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r fakeShipmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, extra map[string]interface{}) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok || sh.Status != from {
		return false, nil
	}
	sh.Status = to
	if t, ok := extra["actual_arrival_date"].(time.Time); ok {
		sh.ActualArrivalDate = &t
	}
	r.s.shipments[id] = sh
	return true, nil
}

func (r fakeShipmentRepo) MarkPaid(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[id]
	if !ok {
		return nil
	}
	sh.PaymentStatus = model.PaymentPaid
	if sh.Status == model.ShipmentPendingPayment {
		sh.Status = model.ShipmentPending
	}
	r.s.shipments[id] = sh
	return nil
}

// --- profiles ---

type fakeProfileRepo struct{ s *memStore }

func (r fakeProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&p.ID)
	r.s.profiles[p.ID] = *p
	return nil
}

func (r fakeProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failProfileLookup != nil {
		return nil, r.s.failProfileLookup
	}
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r fakeProfileRepo) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.profiles {
		if p.Email == email {
			found := p
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeProfileRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Profile
	for _, id := range ids {
		if p, ok := r.s.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- audit ---

type fakeAuditRepo struct{ s *memStore }

func (r fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&entry.ID)
	entry.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r fakeAuditRepo) List(ctx context.Context, action string, page, limit int) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.AuditLog
	for _, a := range r.s.audits {
		if action == "" || a.Action == action {
			out = append(out, a)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

// --- notifications ---

type fakeNotificationRepo struct{ s *memStore }

func (r fakeNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&n.ID)
	n.CreatedAt = time.Now()
	r.s.notifications = append(r.s.notifications, *n)
	return nil
}

func (r fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, limit int) ([]model.Notification, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Notification
	for _, n := range r.s.notifications {
		if n.RecipientID == recipientID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r fakeNotificationRepo) MarkRead(ctx context.Context, recipientID, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, n := range r.s.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			r.s.notifications[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (r fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for i := range r.s.notifications {
		if r.s.notifications[i].RecipientID == recipientID && !r.s.notifications[i].Read {
			r.s.notifications[i].Read = true
			n++
		}
	}
	return n, nil
}

// --- pods ---

type fakePODRepo struct{ s *memStore }

func (r fakePODRepo) Create(ctx context.Context, pod *model.POD) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&pod.ID)
	r.s.pods[pod.ID] = *pod
	return nil
}

func (r fakePODRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.POD, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pods[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r fakePODRepo) List(ctx context.Context, f repository.PODFilter) ([]model.POD, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.POD
	for _, p := range r.s.pods {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.ForwarderID != nil && r.s.shipments[p.ShipmentID].ForwarderID != *f.ForwarderID {
			continue
		}
		out = append(out, p)
	}
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r fakePODRepo) Review(ctx context.Context, id uuid.UUID, review repository.PODReview) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pods[id]
	if !ok || p.Status != model.PODPending {
		return false, nil
	}
	p.Status = review.Status
	p.ReviewerID = &review.ReviewerID
	p.ReviewNotes = review.Notes
	at := review.ReviewedAt
	p.ReviewedAt = &at
	if review.Status == model.PODVerified {
		p.VerifiedAt = &at
	}
	r.s.pods[id] = p
	return true, nil
}

// --- pos sessions ---

type fakePOSRepo struct{ s *memStore }

func (r fakePOSRepo) Create(ctx context.Context, session *model.POSSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&session.ID)
	r.s.sessions[session.ID] = *session
	return nil
}

func (r fakePOSRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.POSSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &sess, nil
}

func (r fakePOSRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.POSSession, error) {
	return r.FindByID(ctx, id)
}

func (r fakePOSRepo) FindOpenByOperator(ctx context.Context, operatorID uuid.UUID) (*model.POSSession, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sess := range r.s.sessions {
		if sess.OperatorID == operatorID && sess.Status == model.POSSessionOpen {
			found := sess
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakePOSRepo) AddSale(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || sess.Status != model.POSSessionOpen {
		return false, nil
	}
	sess.SalesTotal = sess.SalesTotal.Add(amount)
	sess.SalesCount++
	r.s.sessions[id] = sess
	return true, nil
}

func (r fakePOSRepo) Close(ctx context.Context, id uuid.UUID, closingCash, expectedCash decimal.Decimal, notes string, closedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sess, ok := r.s.sessions[id]
	if !ok || sess.Status != model.POSSessionOpen {
		return false, nil
	}
	sess.Status = model.POSSessionClosed
	sess.ClosingCash = &closingCash
	sess.ExpectedCash = &expectedCash
	sess.Notes = notes
	sess.ClosedAt = &closedAt
	r.s.sessions[id] = sess
	return true, nil
}

// --- coupons ---

type fakeCouponRepo struct{ s *memStore }

func (r fakeCouponRepo) Create(ctx context.Context, c *model.Coupon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&c.ID)
	r.s.coupons[c.ID] = *c
	return nil
}

func (r fakeCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r fakeCouponRepo) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.coupons {
		if c.Code == code {
			found := c
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeCouponRepo) List(ctx context.Context, activeOnly bool, page, limit int) ([]model.Coupon, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Coupon
	for _, c := range r.s.coupons {
		if !activeOnly || c.Active {
			out = append(out, c)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r fakeCouponRepo) Deactivate(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[id]
	if !ok || !c.Active {
		return false, nil
	}
	c.Active = false
	r.s.coupons[id] = c
	return true, nil
}

func (r fakeCouponRepo) Redeem(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.coupons[id]
	if !ok || (c.MaxUses > 0 && c.UsedCount >= c.MaxUses) {
		return false, nil
	}
	c.UsedCount++
	r.s.coupons[id] = c
	return true, nil
}

// --- transactions ---

type fakeTransactionRepo struct{ s *memStore }

func (r fakeTransactionRepo) Create(ctx context.Context, t *model.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&t.ID)
	r.s.transactions[t.ID] = *t
	return nil
}

func (r fakeTransactionRepo) FindByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.Reference == reference {
			found := t
			return &found, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r fakeTransactionRepo) SetProviderReference(ctx context.Context, id uuid.UUID, ref string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t := r.s.transactions[id]
	t.ProviderReference = ref
	r.s.transactions[id] = t
	return nil
}

func (r fakeTransactionRepo) Settle(ctx context.Context, id uuid.UUID, status, reason string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.transactions[id]
	if !ok || t.Status != model.TransactionPending {
		return false, nil
	}
	t.Status = status
	t.FailureReason = reason
	r.s.transactions[id] = t
	return true, nil
}

func (r fakeTransactionRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Transaction, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Transaction
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

// --- side-effect recorders ---

type recordedPush struct {
	eventType string
	userIDs   []uuid.UUID
}

type recordingPusher struct {
	mu     sync.Mutex
	pushes []recordedPush
}

func (p *recordingPusher) Push(eventType string, data interface{}, userIDs ...uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, recordedPush{eventType: eventType, userIDs: userIDs})
}

type recordedEvent struct {
	eventType string
	entityID  string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType, entityID string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{eventType: eventType, entityID: entityID})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type recordingMessenger struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (m *recordingMessenger) Send(ctx context.Context, msg notify.Message) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return 1
}

var errStoreDown = errors.New("connection refused")

// --- fixture ---

type fixture struct {
	store     *memStore
	tx        *fakeTxManager
	pusher    *recordingPusher
	publisher *recordingPublisher
	messenger *recordingMessenger

	notifications NotificationService
	automation    *automationService
	shipments     ShipmentService
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{
		store:     store,
		tx:        &fakeTxManager{store: store},
		pusher:    &recordingPusher{},
		publisher: &recordingPublisher{},
		messenger: &recordingMessenger{},
	}
	f.notifications = NewNotificationService(fakeNotificationRepo{store}, fakeProfileRepo{store}, f.pusher, f.messenger)
	f.automation = NewAutomationService(AutomationDeps{
		TxManager:     f.tx,
		Offers:        fakeOfferRepo{store},
		RFQs:          fakeRFQRepo{store},
		Shipments:     fakeShipmentRepo{store},
		Profiles:      fakeProfileRepo{store},
		Audit:         fakeAuditRepo{store},
		Notifications: f.notifications,
		Events:        f.publisher,
		Pusher:        f.pusher,
		Retry:         testRetryPolicy,
	}).(*automationService)
	f.shipments = NewShipmentService(f.tx, fakeShipmentRepo{store}, fakeAuditRepo{store}, f.automation,
		f.notifications, f.publisher, f.pusher, testRetryPolicy)
	return f
}

func (f *fixture) addProfile(role string, mutate ...func(*model.Profile)) model.Profile {
	p := model.Profile{
		ID:       uuid.New(),
		Email:    uuid.NewString()[:8] + "@nextmove.test",
		FullName: role + " user",
		Role:     role,
		Phone:    "+221770000000",
	}
	for _, m := range mutate {
		m(&p)
	}
	f.store.profiles[p.ID] = p
	return p
}

func (f *fixture) addRFQ(clientID uuid.UUID) model.RFQ {
	rfq := model.RFQ{
		ID:                 uuid.New(),
		ClientID:           clientID,
		OriginPort:         "Shanghai",
		OriginCountry:      "China",
		DestinationPort:    "Dakar",
		DestinationCountry: "Senegal",
		CargoType:          "general",
		WeightKg:           1200,
		VolumeCBM:          8.5,
		Quantity:           12,
		TransportMode:      "sea",
		ServiceType:        "port_to_port",
		Status:             model.RFQStatusOpen,
	}
	f.store.rfqs[rfq.ID] = rfq
	return rfq
}

func (f *fixture) addOffer(rfqID, forwarderID uuid.UUID, price string, status string) model.Offer {
	o := model.Offer{
		ID:          uuid.New(),
		RFQID:       rfqID,
		ForwarderID: forwarderID,
		TotalPrice:  decimal.RequireFromString(price),
		Currency:    "USD",
		Status:      status,
	}
	f.store.offers[o.ID] = o
	return o
}

func (f *fixture) addShipment(clientID, forwarderID uuid.UUID, status string) model.Shipment {
	sh := model.Shipment{
		ID:             uuid.New(),
		TrackingNumber: GenerateTrackingNumber(time.Now()),
		RFQID:          uuid.New(),
		OfferID:        uuid.New(),
		ClientID:       clientID,
		ForwarderID:    forwarderID,
		Status:         status,
		PaymentStatus:  model.PaymentUnpaid,
		Price:          decimal.RequireFromString("250.00"),
		Currency:       "USD",
		CarrierName:    "Blue Ocean Freight",
	}
	f.store.shipments[sh.ID] = sh
	return sh
}

func (f *fixture) notificationsFor(recipient uuid.UUID, typ string) []model.Notification {
	var out []model.Notification
	for _, n := range f.store.notifications {
		if n.RecipientID == recipient && (typ == "" || n.Type == typ) {
			out = append(out, n)
		}
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
