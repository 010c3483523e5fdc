//go:build integration

package kvstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"assistflow/internal/platform/kvstore"
	"assistflow/pkg/testutil/containers"
)

const redisNamespace = "kvstore-contract:"

func TestRedisStoreContract(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rc := containers.GetManager().GetRedis(t)
	suite.Run(t, &ContractSuite{newStore: func() kvstore.Store {
		if err := rc.Reset(context.Background(), redisNamespace); err != nil {
			t.Fatalf("reset redis: %v", err)
		}
		return kvstore.NewRedis(rc.Client, kvstore.WithNamespace(redisNamespace))
	}})
}
