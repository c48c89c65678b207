package redis

import (
	"fmt"
	"strings"

	rd "github.com/go-redis/redis/v9"
)

type Config struct {
	Addrs     []string
	Namespace string
}

type baseDao struct {
	redisClient rd.UniversalClient
	namespace   string
}

func newBaseDao(conf Config) *baseDao {
	redisClient := rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs: conf.Addrs,
	})
	return &baseDao{
		redisClient: redisClient,
		namespace:   conf.Namespace,
	}
}

// newBaseDaoFromClient builds a dao over an existing client. Used by tests
// and by the agent to share one connection pool across daos.
func newBaseDaoFromClient(client rd.UniversalClient, namespace string) *baseDao {
	return &baseDao{
		redisClient: client,
		namespace:   namespace,
	}
}

func (bs *baseDao) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", bs.namespace, strings.Join(args, ":"))
}
