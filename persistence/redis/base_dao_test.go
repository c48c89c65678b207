package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	rd "github.com/go-redis/redis/v9"
)

func newTestClient(t *testing.T) rd.UniversalClient {
	t.Helper()
	srv := miniredis.RunT(t)
	return rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs: []string{srv.Addr()},
	})
}
