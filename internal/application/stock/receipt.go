package stock

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/serial"
)

// ReceiptValidationUseCase reconciles a shipped batch at the receiving
// station into received/lost/damaged partitions.
type ReceiptValidationUseCase struct {
	txRunner ports.TxRunner
	monitor  *LowStockMonitor
	notifier ports.Notifier
	activity ports.ActivityLog
}

// NewReceiptValidationUseCase builds the use case.
func NewReceiptValidationUseCase(
	txRunner ports.TxRunner,
	monitor *LowStockMonitor,
	notifier ports.Notifier,
	activity ports.ActivityLog,
) *ReceiptValidationUseCase {
	return &ReceiptValidationUseCase{txRunner: txRunner, monitor: monitor, notifier: notifier, activity: activity}
}

// ValidateReceiptInput input lists may mix bare suffixes and full serials;
// they are normalized and expanded against the movement's own serial prefix.
// An empty Received list is the common case: it is auto-filled as
// sent minus (lost union damaged).
type ValidateReceiptInput struct {
	MovementID         string
	Received           []string
	Lost               []string
	Damaged            []string
	ValidatorStationID string
	Actor              string
}

// ValidateReceiptResult counts of the reconciled partitions.
type ValidateReceiptResult struct {
	ReceivedCount int
	LostCount     int
	DamagedCount  int
}

// Execute validates and applies the reconciliation in one transaction:
// received cards flip IN_TRANSIT -> IN_STATION, lost/damaged stay IN_TRANSIT
// awaiting issue resolution, the movement flips PENDING -> APPROVED, and the
// low-stock monitor runs for the destination. Emissions happen after commit.
func (uc *ReceiptValidationUseCase) Execute(ctx context.Context, input ValidateReceiptInput) (*ValidateReceiptResult, error) {
	var (
		result    ValidateReceiptResult
		hasIssues bool
		movement  *entity.StockMovement
	)

	err := uc.txRunner.Run(ctx, func(r ports.Repos) error {
		m, err := r.Movements.GetByID(ctx, input.MovementID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFoundf("movement %s not found", input.MovementID)
		}
		if m.Type != entity.MovementTypeOut || m.Status != entity.MovementStatusPending {
			return domain.Validationf(domain.CodeValidation,
				"movement %s is %s/%s, expected a pending outbound shipment", m.ID, m.Type, m.Status)
		}
		if m.StationID == nil || *m.StationID != input.ValidatorStationID {
			return domain.Unauthorizedf(domain.CodeUnauthorizedStation,
				"movement %s belongs to another station", m.ID)
		}
		movement = m

		received, lost, damaged, err := reconcile(m, input.Received, input.Lost, input.Damaged)
		if err != nil {
			return err
		}

		if len(received) > 0 {
			affected, err := r.Cards.TransitionBySerials(ctx, repository.CardStatusTransition{
				ProductID: m.ProductID,
				Serials:   received,
				From:      entity.CardStatusInTransit,
				To:        entity.CardStatusInStation,
				Actor:     input.Actor,
			})
			if err != nil {
				return err
			}
			if affected != int64(len(received)) {
				return domain.ConcurrentModificationf(
					"receipt expected %d cards in transit but %d were updated", len(received), affected)
			}
		}

		rows, err := r.Movements.Approve(ctx, m.ID, received, lost, damaged, input.Actor, time.Now())
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ConcurrentModificationf("movement %s was validated concurrently", m.ID)
		}

		current, err := r.Cards.CountByCategoryType(ctx, m.CategoryID, m.TypeID, entity.CardStatusInStation, m.StationID)
		if err != nil {
			return err
		}
		if _, err := uc.monitor.CheckInTx(ctx, r, m.CategoryID, m.TypeID, m.StationID, current); err != nil {
			return err
		}

		result = ValidateReceiptResult{
			ReceivedCount: len(received),
			LostCount:     len(lost),
			DamagedCount:  len(damaged),
		}
		hasIssues = len(lost)+len(damaged) > 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	stationID := ""
	if movement.StationID != nil {
		stationID = *movement.StationID
	}
	if hasIssues {
		uc.notifier.Notify(ctx, ports.Notification{
			Kind:      "receipt_issue",
			Audience:  "admins",
			StationID: stationID,
			Title:     "Shipment issues reported",
			Message: fmt.Sprintf("Batch %s: %d lost, %d damaged, pending resolution",
				movement.BatchID, result.LostCount, result.DamagedCount),
		})
	} else {
		uc.notifier.Notify(ctx, ports.Notification{
			Kind:      "receipt_complete",
			Audience:  "supervisors",
			StationID: stationID,
			Title:     "Shipment received",
			Message:   fmt.Sprintf("Batch %s fully received (%d cards)", movement.BatchID, result.ReceivedCount),
		})
	}
	uc.activity.Record(ctx, input.Actor, "receipt_validate",
		fmt.Sprintf("movement %s: %d received, %d lost, %d damaged",
			movement.ID, result.ReceivedCount, result.LostCount, result.DamagedCount))

	return &result, nil
}

// reconcile normalizes the three input lists against the movement's sent
// serials and enforces the partition rules: subsets of sent, pairwise
// disjoint, total equal to quantity.
func reconcile(m *entity.StockMovement, received, lost, damaged []string) ([]string, []string, []string, error) {
	prefix := movementSerialPrefix(m)

	recv, err := normalizeList(received, prefix, m)
	if err != nil {
		return nil, nil, nil, err
	}
	lst, err := normalizeList(lost, prefix, m)
	if err != nil {
		return nil, nil, nil, err
	}
	dmg, err := normalizeList(damaged, prefix, m)
	if err != nil {
		return nil, nil, nil, err
	}

	seen := make(map[string]string, len(recv)+len(lst)+len(dmg))
	for _, pair := range []struct {
		name string
		list []string
	}{{"received", recv}, {"lost", lst}, {"damaged", dmg}} {
		for _, s := range pair.list {
			if prev, dup := seen[s]; dup {
				return nil, nil, nil, domain.Validationf(domain.CodeSerialOverlap,
					"serial %s appears in both %s and %s", s, prev, pair.name)
			}
			seen[s] = pair.name
		}
	}

	// The usual flow reports only exceptions: received is everything sent
	// that was not flagged lost or damaged.
	if len(recv) == 0 {
		flagged := make(map[string]bool, len(lst)+len(dmg))
		for _, s := range lst {
			flagged[s] = true
		}
		for _, s := range dmg {
			flagged[s] = true
		}
		for _, s := range m.SentSerials {
			if !flagged[s] {
				recv = append(recv, s)
			}
		}
	}

	total := len(recv) + len(lst) + len(dmg)
	if total != m.Quantity {
		return nil, nil, nil, domain.Validationf(domain.CodeCountMismatch,
			"reconciled %d serials (%d received, %d lost, %d damaged) but the movement shipped %d",
			total, len(recv), len(lst), len(dmg), m.Quantity)
	}
	return recv, lst, dmg, nil
}

// movementSerialPrefix recovers the template+year prefix from the shipped
// serials themselves, so receipt inputs parse against the movement's own
// year even across New Year.
func movementSerialPrefix(m *entity.StockMovement) string {
	if len(m.SentSerials) == 0 {
		return ""
	}
	first := m.SentSerials[0]
	if len(first) <= serial.SuffixWidth {
		return ""
	}
	return first[:len(first)-serial.SuffixWidth]
}

// normalizeList trims, expands bare suffixes against the movement prefix,
// dedupes preserving order, and requires every serial to be part of the
// shipment.
func normalizeList(list []string, prefix string, m *entity.StockMovement) ([]string, error) {
	sent := make(map[string]bool, len(m.SentSerials))
	for _, s := range m.SentSerials {
		sent[s] = true
	}

	var out []string
	dedupe := make(map[string]bool, len(list))
	for _, raw := range list {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if len(s) <= 8 && isDigits(s) {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, domain.Validationf(domain.CodeInvalidSerialFormat,
					"serial %q: short input must be numeric", raw)
			}
			s = fmt.Sprintf("%s%0*d", prefix, serial.SuffixWidth, n)
		}
		if !sent[s] {
			return nil, domain.Validationf(domain.CodeUnknownSerial,
				"serial %s is not part of movement %s", s, m.ID)
		}
		if dedupe[s] {
			continue
		}
		dedupe[s] = true
		out = append(out, s)
	}
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
