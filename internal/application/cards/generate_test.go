package cards_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/apptest"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/cards"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/application/ports"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/entity"
	"github.com/Frequent-Whoosher-Card/fwc-dev-sub001/internal/domain/repository"
)

var testAt = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

const testProductID = "prod-1"

func newGenerateEnv(t *testing.T) (*apptest.Store, *cards.GenerateUseCase) {
	t.Helper()
	store := apptest.NewStore()
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	uc := cards.NewGenerateUseCase(&apptest.TxRunner{Store: store}, apptest.Repos(store).Products, &apptest.ActivityLog{})
	return store, uc
}

func TestGenerate_FirstBatchStartsAtOne(t *testing.T) {
	store, uc := newGenerateEnv(t)

	res, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "1", EndSuffix: "100", At: testAt, Actor: "office",
	})
	require.NoError(t, err)

	assert.Equal(t, "TPL2500001", res.FirstSerial)
	assert.Equal(t, "TPL2500100", res.LastSerial)
	assert.Equal(t, 100, res.Count)
	assert.Equal(t, 100, store.CountStatus(testProductID, entity.CardStatusRequested))
}

func TestGenerate_FirstBatchMustStartAtOne(t *testing.T) {
	store, uc := newGenerateEnv(t)

	_, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "5", EndSuffix: "10", At: testAt, Actor: "office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeNonSequentialSerial, domain.CodeOf(err))
	assert.Empty(t, store.Cards)
}

func TestGenerate_ContinuationMustFollowHighestSuffix(t *testing.T) {
	store, uc := newGenerateEnv(t)

	_, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "1", EndSuffix: "50", At: testAt, Actor: "office",
	})
	require.NoError(t, err)

	// A gap.
	_, err = uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "60", EndSuffix: "80", At: testAt, Actor: "office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeNonSequentialSerial, domain.CodeOf(err))

	// An overlap.
	_, err = uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "50", EndSuffix: "60", At: testAt, Actor: "office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeNonSequentialSerial, domain.CodeOf(err))

	// The exact continuation.
	res, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "51", EndSuffix: "80", At: testAt, Actor: "office",
	})
	require.NoError(t, err)
	assert.Equal(t, "TPL2500051", res.FirstSerial)
	assert.Equal(t, 80, store.CountStatus(testProductID, entity.CardStatusRequested))
}

func TestGenerate_BatchCapEnforced(t *testing.T) {
	_, uc := newGenerateEnv(t)

	_, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "1", EndSuffix: "501", At: testAt, Actor: "office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeBatchTooLarge, domain.CodeOf(err))
}

func TestGenerate_InvertedRangeRejected(t *testing.T) {
	_, uc := newGenerateEnv(t)

	_, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "10", EndSuffix: "5", At: testAt, Actor: "office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeInvalidSerialFormat, domain.CodeOf(err))
}

// rivalCardRepo generates the first serial of the same range for another
// actor right after the sequential-continuation read, reproducing two
// concurrent generations racing the same starting suffix.
type rivalCardRepo struct {
	repository.CardRepository
	raced bool
}

func (r *rivalCardRepo) MaxSuffix(ctx context.Context, productID, prefix string) (int, bool, error) {
	highest, ok, err := r.CardRepository.MaxSuffix(ctx, productID, prefix)
	if err == nil && !r.raced {
		r.raced = true
		rival := &entity.Card{
			ProductID:    productID,
			SerialNumber: "TPL2500001",
			Status:       entity.CardStatusRequested,
		}
		if cerr := r.CardRepository.CreateBatch(ctx, []*entity.Card{rival}); cerr != nil {
			return 0, false, cerr
		}
	}
	return highest, ok, err
}

func TestGenerate_ConcurrentGenerationLoserAborts(t *testing.T) {
	store := apptest.NewStore()
	store.AddProduct(testProductID, "FWC", "REG", "TPL", 60, 365)
	tx := &apptest.TxRunner{Store: store}
	uc := cards.NewGenerateUseCase(tx, apptest.Repos(store).Products, &apptest.ActivityLog{})

	tx.Wrap = func(r ports.Repos) ports.Repos {
		r.Cards = &rivalCardRepo{CardRepository: r.Cards}
		return r
	}

	_, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "1", EndSuffix: "10", At: testAt, Actor: "office",
	})
	require.Error(t, err)
	assert.Equal(t, domain.CodeConcurrentModification, domain.CodeOf(err))
	assert.Empty(t, store.Cards)
}

func TestGenerate_CancelledContextAborts(t *testing.T) {
	store, uc := newGenerateEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Execute(ctx, cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "1", EndSuffix: "10", At: testAt, Actor: "office",
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, store.Cards)
}

func TestGenerate_NewYearRestartsNumbering(t *testing.T) {
	store, uc := newGenerateEnv(t)

	_, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "1", EndSuffix: "50", At: testAt, Actor: "office",
	})
	require.NoError(t, err)

	// The 2026 prefix has no cards yet, so its range starts at 1 again.
	nextYear := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	res, err := uc.Execute(context.Background(), cards.GenerateInput{
		ProductID: testProductID, StartSuffix: "1", EndSuffix: "20", At: nextYear, Actor: "office",
	})
	require.NoError(t, err)
	assert.Equal(t, "TPL2600001", res.FirstSerial)
	assert.Equal(t, 70, store.CountStatus(testProductID, entity.CardStatusRequested))
}
