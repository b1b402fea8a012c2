package apptest

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

// Repos binds the fake repositories to a store.
func Repos(s *Store) ports.Repos {
	return ports.Repos{
		Cards:     &cardRepo{s},
		Movements: &movementRepo{s},
		Products:  &productRepo{s},
		Stations:  &stationRepo{s},
		Purchases: &purchaseRepo{s},
		Swaps:     &swapRepo{s},
		Alerts:    &alertRepo{s},
	}
}

// TxRunner runs the callback against a clone of the store and commits the
// clone only when the callback succeeds, mirroring database transaction
// semantics. A context cancelled before Run aborts without starting, as a
// real pool would refuse to begin. Wrap, when set, decorates the
// transaction-bound repos so tests can inject failures mid-transaction.
type TxRunner struct {
	Store *Store
	Wrap  func(ports.Repos) ports.Repos
}

var _ ports.TxRunner = (*TxRunner)(nil)

func (t *TxRunner) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := t.Store.clone()
	r := Repos(tx)
	if t.Wrap != nil {
		r = t.Wrap(r)
	}
	if err := fn(r); err != nil {
		return err
	}
	t.Store.replaceWith(tx)
	return nil
}

// Notifier records notifications for assertions.
type Notifier struct {
	Sent []ports.Notification
}

func (n *Notifier) Notify(ctx context.Context, msg ports.Notification) {
	n.Sent = append(n.Sent, msg)
}

// ActivityLog records audit entries for assertions.
type ActivityLog struct {
	Entries []string
}

func (a *ActivityLog) Record(ctx context.Context, actor, action, detail string) {
	a.Entries = append(a.Entries, actor+" "+action+": "+detail)
}

// ── Cards ────────────────────────────────────────────────────────────────────

type cardRepo struct{ s *Store }

var _ repository.CardRepository = (*cardRepo)(nil)

func (r *cardRepo) CreateBatch(ctx context.Context, cards []*entity.Card) error {
	for _, c := range cards {
		if existing := r.s.CardBySerial(c.SerialNumber); existing != nil {
			return domain.ConcurrentModificationf(
				"card %s was generated concurrently", c.SerialNumber)
		}
	}
	for _, c := range cards {
		cp := *c
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		r.s.Cards[cp.ID] = &cp
	}
	return nil
}

func (r *cardRepo) GetByID(ctx context.Context, id string) (*entity.Card, error) {
	c, ok := r.s.Cards[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *cardRepo) ListBySerials(ctx context.Context, productID string, serials []string) ([]*entity.Card, error) {
	want := map[string]bool{}
	for _, s := range serials {
		want[s] = true
	}
	var out []*entity.Card
	for _, c := range r.s.Cards {
		if c.ProductID == productID && want[c.SerialNumber] {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

func (r *cardRepo) MaxSuffix(ctx context.Context, productID, prefix string) (int, bool, error) {
	highest, found := 0, false
	for _, c := range r.s.Cards {
		if c.ProductID != productID || !strings.HasPrefix(c.SerialNumber, prefix) {
			continue
		}
		rest := c.SerialNumber[len(prefix):]
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if !found || n > highest {
			highest, found = n, true
		}
	}
	return highest, found, nil
}

func (r *cardRepo) TransitionBySerials(ctx context.Context, t repository.CardStatusTransition) (int64, error) {
	want := map[string]bool{}
	for _, s := range t.Serials {
		want[s] = true
	}
	var count int64
	for _, c := range r.s.Cards {
		if c.ProductID != t.ProductID || !want[c.SerialNumber] || c.Status != t.From {
			continue
		}
		c.Status = t.To
		if t.StationID != nil {
			c.PreviousStationID = c.StationID
			sid := *t.StationID
			c.StationID = &sid
		}
		if t.ClearStation {
			c.PreviousStationID = c.StationID
			c.StationID = nil
		}
		c.UpdatedBy = t.Actor
		count++
	}
	return count, nil
}

func (r *cardRepo) Restore(ctx context.Context, cardID, actor string) (int64, error) {
	c, ok := r.s.Cards[cardID]
	if !ok || c.Status != entity.CardStatusSoldActive {
		return 0, nil
	}
	c.Status = entity.CardStatusInStation
	c.MemberID = nil
	c.PurchaseDate = nil
	c.ExpiredDate = nil
	c.QuotaRemaining = 0
	c.UpdatedBy = actor
	return 1, nil
}

func (r *cardRepo) Activate(ctx context.Context, cardID, memberID string, purchaseDate, expiredDate time.Time, quota int, actor string) (int64, error) {
	c, ok := r.s.Cards[cardID]
	if !ok || c.Status != entity.CardStatusInStation {
		return 0, nil
	}
	c.Status = entity.CardStatusSoldActive
	c.MemberID = &memberID
	c.PurchaseDate = &purchaseDate
	c.ExpiredDate = &expiredDate
	c.QuotaRemaining = quota
	c.UpdatedBy = actor
	return 1, nil
}

func (r *cardRepo) CountByStatus(ctx context.Context, productID string, status entity.CardStatus, stationID *string) (int, error) {
	n := 0
	for _, c := range r.s.Cards {
		if c.ProductID != productID || c.Status != status {
			continue
		}
		if stationID != nil && (c.StationID == nil || *c.StationID != *stationID) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *cardRepo) CountByCategoryType(ctx context.Context, categoryID, typeID string, status entity.CardStatus, stationID *string) (int, error) {
	n := 0
	for _, c := range r.s.Cards {
		p, ok := r.s.Products[c.ProductID]
		if !ok || p.CategoryID != categoryID || p.TypeID != typeID || c.Status != status {
			continue
		}
		if stationID != nil && (c.StationID == nil || *c.StationID != *stationID) {
			continue
		}
		n++
	}
	return n, nil
}

func (r *cardRepo) AnyInStation(ctx context.Context, productID string) (bool, error) {
	for _, c := range r.s.Cards {
		if c.ProductID == productID && c.Status == entity.CardStatusInStation {
			return true, nil
		}
	}
	return false, nil
}

func (r *cardRepo) StatusRange(ctx context.Context, productID string, status entity.CardStatus) (string, string, int, error) {
	first, last, count := "", "", 0
	for _, c := range r.s.Cards {
		if c.ProductID != productID || c.Status != status {
			continue
		}
		if count == 0 || c.SerialNumber < first {
			first = c.SerialNumber
		}
		if count == 0 || c.SerialNumber > last {
			last = c.SerialNumber
		}
		count++
	}
	return first, last, count, nil
}

// ── Movements ────────────────────────────────────────────────────────────────

type movementRepo struct{ s *Store }

var _ repository.StockMovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	cp := *m
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		m.ID = cp.ID
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.s.Movements[cp.ID] = &cp
	return nil
}

func (r *movementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, error) {
	m, ok := r.s.Movements[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *movementRepo) Approve(ctx context.Context, id string, received, lost, damaged []string, validatedBy string, validatedAt time.Time) (int64, error) {
	m, ok := r.s.Movements[id]
	if !ok || m.Status != entity.MovementStatusPending {
		return 0, nil
	}
	m.Status = entity.MovementStatusApproved
	m.ReceivedSerials = append([]string(nil), received...)
	m.LostSerials = append([]string(nil), lost...)
	m.DamagedSerials = append([]string(nil), damaged...)
	m.ValidatedBy = &validatedBy
	at := validatedAt
	m.ValidatedAt = &at
	return 1, nil
}

func (r *movementRepo) Delete(ctx context.Context, id string) (int64, error) {
	m, ok := r.s.Movements[id]
	if !ok || m.Status != entity.MovementStatusPending {
		return 0, nil
	}
	delete(r.s.Movements, id)
	return 1, nil
}

func (r *movementRepo) CountByBatchPrefix(ctx context.Context, prefix string) (int, error) {
	n := 0
	for _, m := range r.s.Movements {
		if strings.HasPrefix(m.BatchID, prefix) {
			n++
		}
	}
	return n, nil
}

func (r *movementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	var all []*entity.StockMovement
	for _, m := range r.s.Movements {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Status != "" && m.Status != f.Status {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.StationID != "" && (m.StationID == nil || *m.StationID != f.StationID) {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		cp := *m
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if f.Offset > 0 {
		if f.Offset >= len(all) {
			all = nil
		} else {
			all = all[f.Offset:]
		}
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

// ── Products ─────────────────────────────────────────────────────────────────

type productRepo struct{ s *Store }

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.Products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *productRepo) GetByCategoryType(ctx context.Context, categoryID, typeID string) (*entity.Product, error) {
	for _, p := range r.s.Products {
		if p.CategoryID == categoryID && p.TypeID == typeID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

// ── Stations ─────────────────────────────────────────────────────────────────

type stationRepo struct{ s *Store }

var _ repository.StationRepository = (*stationRepo)(nil)

func (r *stationRepo) GetByID(ctx context.Context, id string) (*entity.Station, error) {
	st, ok := r.s.Stations[id]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *stationRepo) AdjustInventory(ctx context.Context, stationID, productID string, availableDelta, activeDelta int) error {
	key := stationID + "|" + productID
	inv, ok := r.s.Inventory[key]
	if !ok {
		inv = &entity.StationInventory{StationID: stationID, ProductID: productID}
		r.s.Inventory[key] = inv
	}
	inv.AvailableCount += availableDelta
	if inv.AvailableCount < 0 {
		inv.AvailableCount = 0
	}
	inv.ActiveCount += activeDelta
	if inv.ActiveCount < 0 {
		inv.ActiveCount = 0
	}
	inv.UpdatedAt = time.Now()
	return nil
}

func (r *stationRepo) GetInventory(ctx context.Context, stationID, productID string) (*entity.StationInventory, error) {
	inv, ok := r.s.Inventory[stationID+"|"+productID]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

// ── Purchases ────────────────────────────────────────────────────────────────

type purchaseRepo struct{ s *Store }

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

func (r *purchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	p, ok := r.s.Purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *purchaseRepo) Repoint(ctx context.Context, purchaseID, cardID, stationID, noteAppend, actor string) (int64, error) {
	p, ok := r.s.Purchases[purchaseID]
	if !ok {
		return 0, nil
	}
	p.CardID = cardID
	p.StationID = stationID
	if p.Notes == "" {
		p.Notes = noteAppend
	} else {
		p.Notes += "\n" + noteAppend
	}
	p.UpdatedBy = actor
	p.UpdatedAt = time.Now()
	return 1, nil
}

// ── Swaps ────────────────────────────────────────────────────────────────────

type swapRepo struct{ s *Store }

var _ repository.SwapRepository = (*swapRepo)(nil)

func (r *swapRepo) Create(ctx context.Context, sr *entity.SwapRequest) error {
	cp := *sr
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		sr.ID = cp.ID
	}
	if cp.RequestedAt.IsZero() {
		cp.RequestedAt = time.Now()
	}
	r.s.Swaps[cp.ID] = &cp
	return nil
}

func (r *swapRepo) GetByID(ctx context.Context, id string) (*entity.SwapRequest, error) {
	sr, ok := r.s.Swaps[id]
	if !ok {
		return nil, nil
	}
	cp := *sr
	return &cp, nil
}

func (r *swapRepo) FindOpenByPurchase(ctx context.Context, purchaseID string) (*entity.SwapRequest, error) {
	for _, sr := range r.s.Swaps {
		if sr.PurchaseID == purchaseID && sr.Open() {
			cp := *sr
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *swapRepo) Approve(ctx context.Context, id, actor string, at time.Time) (int64, error) {
	sr, ok := r.s.Swaps[id]
	if !ok || sr.Status != entity.SwapStatusPendingApproval {
		return 0, nil
	}
	sr.Status = entity.SwapStatusApproved
	sr.ApprovedBy = &actor
	t := at
	sr.ApprovedAt = &t
	return 1, nil
}

func (r *swapRepo) Reject(ctx context.Context, id, actor, reason string, at time.Time) (int64, error) {
	sr, ok := r.s.Swaps[id]
	if !ok || sr.Status != entity.SwapStatusPendingApproval {
		return 0, nil
	}
	sr.Status = entity.SwapStatusRejected
	sr.RejectedBy = &actor
	sr.RejectReason = &reason
	t := at
	sr.RejectedAt = &t
	return 1, nil
}

func (r *swapRepo) Cancel(ctx context.Context, id string, at time.Time) (int64, error) {
	sr, ok := r.s.Swaps[id]
	if !ok || sr.Status != entity.SwapStatusPendingApproval {
		return 0, nil
	}
	sr.Status = entity.SwapStatusCancelled
	t := at
	sr.CancelledAt = &t
	return 1, nil
}

func (r *swapRepo) Complete(ctx context.Context, id, replacementCardID, actor string, at time.Time) (int64, error) {
	sr, ok := r.s.Swaps[id]
	if !ok || sr.Status != entity.SwapStatusApproved {
		return 0, nil
	}
	sr.Status = entity.SwapStatusCompleted
	sr.ReplacementCardID = &replacementCardID
	sr.ExecutedBy = &actor
	t := at
	sr.ExecutedAt = &t
	return 1, nil
}

func (r *swapRepo) CreateHistory(ctx context.Context, h *entity.SwapHistory) error {
	cp := *h
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		h.ID = cp.ID
	}
	r.s.History = append(r.s.History, &cp)
	return nil
}

func (r *swapRepo) ListHistoryByPurchase(ctx context.Context, purchaseID string) ([]*entity.SwapHistory, error) {
	var out []*entity.SwapHistory
	for _, h := range r.s.History {
		if h.PurchaseID == purchaseID {
			cp := *h
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *swapRepo) List(ctx context.Context, f repository.SwapFilter) ([]*entity.SwapRequest, int, error) {
	var all []*entity.SwapRequest
	for _, sr := range r.s.Swaps {
		if f.Status != "" && string(sr.Status) != f.Status {
			continue
		}
		if f.StationID != "" && sr.SourceStationID != f.StationID && sr.TargetStationID != f.StationID {
			continue
		}
		cp := *sr
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].RequestedAt.After(all[j].RequestedAt) })
	total := len(all)
	if f.Offset > 0 {
		if f.Offset >= len(all) {
			all = nil
		} else {
			all = all[f.Offset:]
		}
	}
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

// ── Alerts ───────────────────────────────────────────────────────────────────

type alertRepo struct{ s *Store }

var _ repository.StockAlertRepository = (*alertRepo)(nil)

func sameStation(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *alertRepo) FindUnresolved(ctx context.Context, categoryID, typeID string, stationID *string) (*entity.StockAlert, error) {
	for _, a := range r.s.Alerts {
		if a.CategoryID == categoryID && a.TypeID == typeID && sameStation(a.StationID, stationID) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *alertRepo) Create(ctx context.Context, a *entity.StockAlert) error {
	cp := *a
	if cp.ID == "" {
		cp.ID = uuid.NewString()
		a.ID = cp.ID
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.s.Alerts = append(r.s.Alerts, &cp)
	return nil
}

func (r *alertRepo) DeleteUnresolved(ctx context.Context, categoryID, typeID string, stationID *string) error {
	kept := r.s.Alerts[:0]
	for _, a := range r.s.Alerts {
		if a.CategoryID == categoryID && a.TypeID == typeID && sameStation(a.StationID, stationID) {
			continue
		}
		kept = append(kept, a)
	}
	r.s.Alerts = kept
	return nil
}
