package notify_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"wallet-service/internal/db"
	"wallet-service/internal/message"
	"wallet-service/internal/notify"
	"wallet-service/tests/testhelpers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ConsumerTestSuite struct {
	suite.Suite
	pgContainer *testhelpers.PostgresContainer
	pool        *pgxpool.Pool
	repo        *db.NotificationRepository
	sut         *notify.Consumer
	ctx         context.Context
}

func (s *ConsumerTestSuite) SetupSuite() {
	time.Local = time.UTC

	s.ctx = context.Background()
	pgContainer, err := testhelpers.CreatePostgresContainer(s.ctx)
	if err != nil {
		log.Fatal(err)
	}
	s.pgContainer = pgContainer

	db.RunMigrations(pgContainer.ConnectionString, "../../../migrations")

	pool, err := db.GetPool(pgContainer.ConnectionString)
	if err != nil {
		log.Fatal(err)
	}

	s.pool = pool
	s.repo = db.NewNotificationRepository(pool)
	s.sut = notify.NewConsumer(s.repo, slog.Default())
}

func (s *ConsumerTestSuite) TearDownSuite() {
	s.pool.Close()

	if err := s.pgContainer.Terminate(s.ctx); err != nil {
		log.Fatalf("error terminating postgres container: %s", err)
	}
}

func (s *ConsumerTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "DELETE FROM notification_message")
	if err != nil {
		log.Fatalf("error truncating notification_message table: %s", err)
	}
}

func (s *ConsumerTestSuite) TestProcess_QueuesNotification() {
	t := s.T()

	event := message.WalletFundedEvent{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		Reference: "ref-123",
		Amount:    2500.00,
		Currency:  "NGN",
		Balance:   2500.00,
		FundedAt:  time.Now(),
	}

	err := s.sut.Process(s.ctx, event)
	assert.NoError(t, err)

	entity, err := s.repo.SelectByID(s.ctx, event.ID)
	assert.NoError(t, err)
	assert.Equal(t, event.ProfileID, entity.ProfileID)
	assert.Contains(t, entity.Payload, "Wallet Funded")
	assert.Contains(t, entity.Payload, "2500.00 NGN")
	assert.Contains(t, entity.Payload, "ref-123")
	assert.NotNil(t, entity.ScheduledAt)
	assert.WithinDuration(t, time.Now(), *entity.ScheduledAt, time.Second)
	assert.Nil(t, entity.PublishedAt)
}

func (s *ConsumerTestSuite) TestProcess_RedeliveredEventQueuesOnce() {
	t := s.T()

	event := message.WalletFundedEvent{
		ID:        uuid.New(),
		ProfileID: uuid.New(),
		Reference: "ref-123",
		Amount:    2500.00,
		Currency:  "NGN",
	}

	assert.NoError(t, s.sut.Process(s.ctx, event))
	assert.NoError(t, s.sut.Process(s.ctx, event))

	var count int
	err := s.pool.QueryRow(s.ctx, "SELECT count(*) FROM notification_message").Scan(&count)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestConsumerTestSuite(t *testing.T) {
	suite.Run(t, new(ConsumerTestSuite))
}
