package complete_payment

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-StudioBooking/internal/domain"
	"github.com/m04kA/SMC-StudioBooking/internal/infra/storage/payment"
	"github.com/m04kA/SMC-StudioBooking/internal/integrations/stripe"
	"github.com/m04kA/SMC-StudioBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-StudioBooking/pkg/logger"
	"github.com/m04kA/SMC-StudioBooking/pkg/txmanager"
)

var errSerialization = &pq.Error{Code: "40001", Message: "could not serialize access due to read/write dependencies among transactions"}

// noopTx транзакция без соединения, репозитории в тестах работают с памятью
type noopTx struct{ dbmetrics.DBExecutor }

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

type countingBeginner struct{ begins int }

func (b *countingBeginner) BeginTx(context.Context, *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	b.begins++
	return noopTx{}, nil
}

// flakyPayments отвечает ошибкой сериализации на первые вызовы Record
type flakyPayments struct {
	PaymentRepository
	failures   int
	calls      int
	beforeFail func()
}

func (f *flakyPayments) Record(ctx context.Context, p *domain.Payment) (bool, error) {
	f.calls++
	if f.failures > 0 {
		f.failures--
		if f.beforeFail != nil {
			f.beforeFail()
		}
		return false, fmt.Errorf("%w: Record - execute insert: %w", payment.ErrExecQuery, errSerialization)
	}
	return f.PaymentRepository.Record(ctx, p)
}

func (e *testEnv) withSQLTx(payments PaymentRepository) (*UseCase, *countingBeginner) {
	db := &countingBeginner{}
	uc := NewUseCaseWithTime(
		stripe.NewWebhook(webhookSecret, stripe.DefaultTolerance),
		payments, e.resSvc, e.ledger, e.coupons,
		e.store.Outbox(), txmanager.NewTransactionManager(db), e.metrics, e.clock, logger.NewNop(),
	)
	return uc, db
}

func TestUseCase_RetriesSerializationFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := uuid.New()

	flaky := &flakyPayments{PaymentRepository: env.store.Payments(), failures: 1}
	uc, db := env.withSQLTx(flaky)

	req := env.signed(t, "checkout.session.completed", "cs_retry", 1000, env.reservationMeta(customer, env.studio.SingleBay, nil))
	resp, err := uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeReservation, resp.Outcome)
	assert.Equal(t, 2, db.begins)
	assert.Equal(t, 2, flaky.calls)

	counts := env.store.Counts()
	assert.Equal(t, 1, counts.Reservations)
	assert.Equal(t, 1, counts.Payments)
}

func TestUseCase_ConcurrentDuplicateDeliveryIsRetriedIntoDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	customer := uuid.New()
	req := env.signed(t, "checkout.session.completed", "cs_twice", 1000, env.reservationMeta(customer, env.studio.SingleBay, nil))

	// вторая доставка того же события фиксируется раньше нашей транзакции
	flaky := &flakyPayments{PaymentRepository: env.store.Payments(), failures: 1, beforeFail: func() {
		other, err := env.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		require.Equal(t, OutcomeReservation, other.Outcome)
	}}
	uc, db := env.withSQLTx(flaky)

	resp, err := uc.Execute(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, resp.Outcome)
	assert.Equal(t, 2, db.begins)

	counts := env.store.Counts()
	assert.Equal(t, 1, counts.Reservations)
	assert.Equal(t, 1, counts.Payments)
	assert.Len(t, env.store.TasksOfKind(domain.TaskProvisionAccess), 1)
}
