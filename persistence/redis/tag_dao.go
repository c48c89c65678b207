package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
)

const TAG string = "TAG"

type redisTagStore struct {
	*baseDao
	encDec util.EncoderDecoder[model.Tag]
}

var _ persistence.TagStore = new(redisTagStore)

func NewRedisTagStore(conf Config) *redisTagStore {
	return &redisTagStore{
		baseDao: newBaseDao(conf),
		encDec:  util.NewJsonEncoderDecoder[model.Tag](),
	}
}

func NewRedisTagStoreFromClient(client rd.UniversalClient, namespace string) *redisTagStore {
	return &redisTagStore{
		baseDao: newBaseDaoFromClient(client, namespace),
		encDec:  util.NewJsonEncoderDecoder[model.Tag](),
	}
}

func (rs *redisTagStore) Save(tag model.Tag) error {
	key := rs.getNamespaceKey(tag.TenantId, TAG)
	ctx := context.Background()
	data, err := rs.encDec.Encode(tag)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, tag.Id, data).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisTagStore) Get(tenantId string, tagId string) (*model.Tag, error) {
	key := rs.getNamespaceKey(tenantId, TAG)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, tagId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "tag", Id: tagId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encDec.Decode([]byte(val))
}
