package availability_test

import (
	"context"
	"log"
	"log/slog"
	"testing"
	"time"

	"wallet-service/internal/availability"
	"wallet-service/internal/db"
	"wallet-service/tests/testhelpers"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CheckerTestSuite struct {
	suite.Suite
	pgContainer *testhelpers.PostgresContainer
	pool        *pgxpool.Pool
	profiles    *db.ProfileRepository
	sut         *availability.Checker
	ctx         context.Context
}

func (s *CheckerTestSuite) SetupSuite() {
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
	s.profiles = db.NewProfileRepository(pool)
	s.sut = availability.NewChecker(s.profiles, slog.Default())
}

func (s *CheckerTestSuite) TearDownSuite() {
	s.pool.Close()

	if err := s.pgContainer.Terminate(s.ctx); err != nil {
		log.Fatalf("error terminating postgres container: %s", err)
	}
}

func (s *CheckerTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, "DELETE FROM profile")
	if err != nil {
		log.Fatalf("error truncating profile table: %s", err)
	}

	_, err = s.profiles.Create(s.ctx, &db.ProfileEntity{
		ID:       uuid.New(),
		Email:    "chidi@example.com",
		Username: "chidi",
	})
	if err != nil {
		log.Fatalf("error seeding profile: %s", err)
	}
}

func (s *CheckerTestSuite) TestTakenUsername() {
	t := s.T()

	result, err := s.sut.Check(s.ctx, availability.Request{Field: "username", Value: "chidi"})
	assert.NoError(t, err)
	assert.False(t, result.Available)
	assert.Len(t, result.Suggestions, 3)
	for _, suggestion := range result.Suggestions {
		assert.NotEqual(t, "chidi", suggestion)
	}
}

func (s *CheckerTestSuite) TestFreeUsername() {
	t := s.T()

	result, err := s.sut.Check(s.ctx, availability.Request{Field: "username", Value: "adaeze"})
	assert.NoError(t, err)
	assert.True(t, result.Available)
	assert.Empty(t, result.Suggestions)
}

func (s *CheckerTestSuite) TestTakenEmail() {
	t := s.T()

	result, err := s.sut.Check(s.ctx, availability.Request{Field: "email", Value: "chidi@example.com"})
	assert.NoError(t, err)
	assert.False(t, result.Available)
	assert.Empty(t, result.Suggestions)
}

func (s *CheckerTestSuite) TestFiltersNarrowTheMatch() {
	t := s.T()

	result, err := s.sut.Check(s.ctx, availability.Request{
		Field:   "username",
		Value:   "chidi",
		Filters: map[string]string{"email": "other@example.com"},
	})
	assert.NoError(t, err)
	assert.True(t, result.Available)
}

func TestCheckerTestSuite(t *testing.T) {
	suite.Run(t, new(CheckerTestSuite))
}
