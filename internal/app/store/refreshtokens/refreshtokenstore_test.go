package refreshtokenstore_test

import (
	"testing"
	"time"

	refreshtokenstore "github.com/shelterhub/shelterhub/internal/app/store/refreshtokens"
	"github.com/shelterhub/shelterhub/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateReplacesPreviousToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := refreshtokenstore.New(db, 30*24*time.Hour)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID := primitive.NewObjectID()

	first, err := s.Generate(ctx, userID, "vol@test.com")
	require.NoError(t, err)

	second, err := s.Generate(ctx, userID, "vol@test.com")
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	// The first token was invalidated by the rotation.
	_, err = s.Consume(ctx, "vol@test.com", first.Token)
	require.ErrorIs(t, err, refreshtokenstore.ErrInvalid)

	_, err = s.Consume(ctx, "vol@test.com", second.Token)
	require.NoError(t, err)
}

func TestConsumeChecksEmailAndExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := refreshtokenstore.New(db, time.Hour)
	userID := primitive.NewObjectID()

	rt, err := s.Generate(ctx, userID, "vol@test.com")
	require.NoError(t, err)

	_, err = s.Consume(ctx, "other@test.com", rt.Token)
	require.ErrorIs(t, err, refreshtokenstore.ErrInvalid)

	expired := refreshtokenstore.New(db, -time.Minute)
	rt2, err := expired.Generate(ctx, userID, "vol@test.com")
	require.NoError(t, err)
	_, err = expired.Consume(ctx, "vol@test.com", rt2.Token)
	require.ErrorIs(t, err, refreshtokenstore.ErrInvalid)
}
