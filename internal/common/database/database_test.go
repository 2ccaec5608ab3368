package database

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-predictor/internal/common/config"
)

func TestPostgresClient_PingAndExec(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	client := NewPostgresFromDB(db)

	mock.ExpectPing()
	mock.ExpectExec("DELETE FROM model_artifacts").
		WithArgs("bankruptcy-classifier").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectClose()

	require.NoError(t, client.Ping(context.Background()))
	res, err := client.Exec(context.Background(), "DELETE FROM model_artifacts WHERE name = $1", "bankruptcy-classifier")
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.Equal(t, int64(2), n)
	require.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
