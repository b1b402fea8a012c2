package stock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/serial"
)

// StockInUseCase records an office receipt: a generated serial range arrives
// from the manufacturer and the cards flip REQUESTED -> IN_OFFICE.
type StockInUseCase struct {
	txRunner ports.TxRunner
	products repository.ProductRepository
	activity ports.ActivityLog
}

// NewStockInUseCase builds the use case.
func NewStockInUseCase(txRunner ports.TxRunner, products repository.ProductRepository, activity ports.ActivityLog) *StockInUseCase {
	return &StockInUseCase{txRunner: txRunner, products: products, activity: activity}
}

// StockInInput input for an IN movement. Suffix fields accept bare suffixes
// or full serials; MovementAt defaults to now and fixes the serial year.
type StockInInput struct {
	ProductID   string
	StartSuffix string
	EndSuffix   string
	MovementAt  time.Time
	Notes       string
	Actor       string
}

// StockInResult summary of the recorded movement.
type StockInResult struct {
	MovementID  string
	Quantity    int
	FirstSerial string
	LastSerial  string
}

// Execute validates the range, then atomically flips every card in it from
// REQUESTED to IN_OFFICE and writes one APPROVED IN movement. The flip is a
// conditional bulk update; an affected-row mismatch aborts the transaction.
func (uc *StockInUseCase) Execute(ctx context.Context, input StockInInput) (*StockInResult, error) {
	product, err := uc.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFoundf("product %s not found", input.ProductID)
	}

	at := input.MovementAt
	if at.IsZero() {
		at = time.Now()
	}
	year := serial.YearSuffix(at)

	start, err := serial.ParseSuffix(input.StartSuffix, product.SerialTemplate, year)
	if err != nil {
		return nil, err
	}
	end, err := serial.ParseSuffix(input.EndSuffix, product.SerialTemplate, year)
	if err != nil {
		return nil, err
	}
	serials, err := serial.Range(product.SerialTemplate, year, start, end, serial.MovementBatchCap)
	if err != nil {
		return nil, err
	}

	movement := &entity.StockMovement{
		Type:        entity.MovementTypeIn,
		Status:      entity.MovementStatusApproved,
		ProductID:   product.ID,
		CategoryID:  product.CategoryID,
		TypeID:      product.TypeID,
		Quantity:    len(serials),
		SentSerials: serials,
		Notes:       input.Notes,
		CreatedAt:   at,
		CreatedBy:   input.Actor,
	}

	err = uc.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := requireAllInStatus(ctx, r, product.ID, serials, entity.CardStatusRequested); err != nil {
			return err
		}

		affected, err := r.Cards.TransitionBySerials(ctx, repository.CardStatusTransition{
			ProductID: product.ID,
			Serials:   serials,
			From:      entity.CardStatusRequested,
			To:        entity.CardStatusInOffice,
			Actor:     input.Actor,
		})
		if err != nil {
			return err
		}
		if affected != int64(len(serials)) {
			return domain.ConcurrentModificationf(
				"stock in claimed %d cards but %d were updated", len(serials), affected)
		}

		return r.Movements.Create(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	uc.activity.Record(ctx, input.Actor, "stock_in",
		fmt.Sprintf("movement %s: %d cards %s..%s", movement.ID, len(serials), serials[0], serials[len(serials)-1]))

	return &StockInResult{
		MovementID:  movement.ID,
		Quantity:    len(serials),
		FirstSerial: serials[0],
		LastSerial:  serials[len(serials)-1],
	}, nil
}

// requireAllInStatus checks every serial exists as a card in the expected
// status. Missing serials surface SERIALS_NOT_GENERATED listing up to three;
// a card in another status surfaces INVALID_CARD_STATE naming it.
func requireAllInStatus(ctx context.Context, r ports.Repos, productID string, serials []string, want entity.CardStatus) error {
	cards, err := r.Cards.ListBySerials(ctx, productID, serials)
	if err != nil {
		return err
	}
	byNumber := make(map[string]*entity.Card, len(cards))
	for _, c := range cards {
		byNumber[c.SerialNumber] = c
	}

	var missing []string
	for _, s := range serials {
		c, ok := byNumber[s]
		if !ok {
			missing = append(missing, s)
			continue
		}
		if c.Status != want {
			return domain.Validationf(domain.CodeInvalidCardState,
				"card %s is %s, expected %s", s, c.Status, want)
		}
	}
	if len(missing) > 0 {
		return domain.Validationf(domain.CodeSerialsNotGenerated,
			"serials not generated yet: %s", summarizeSerials(missing))
	}
	return nil
}

// summarizeSerials lists up to three serials with a remainder count.
func summarizeSerials(serials []string) string {
	if len(serials) <= 3 {
		return strings.Join(serials, ", ")
	}
	return fmt.Sprintf("%s (and %d more)", strings.Join(serials[:3], ", "), len(serials)-3)
}
