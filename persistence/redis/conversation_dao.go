package redis

import (
	"context"
	"errors"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
)

const CONVERSATION string = "CONVERSATION"
const ACTIVE_CONVERSATION string = "ACTIVE_CONVERSATION"

type redisConversationStore struct {
	*baseDao
	encDec util.EncoderDecoder[model.Conversation]
}

var _ persistence.ConversationStore = new(redisConversationStore)

func NewRedisConversationStore(conf Config) *redisConversationStore {
	return &redisConversationStore{
		baseDao: newBaseDao(conf),
		encDec:  util.NewJsonEncoderDecoder[model.Conversation](),
	}
}

func NewRedisConversationStoreFromClient(client rd.UniversalClient, namespace string) *redisConversationStore {
	return &redisConversationStore{
		baseDao: newBaseDaoFromClient(client, namespace),
		encDec:  util.NewJsonEncoderDecoder[model.Conversation](),
	}
}

func (rs *redisConversationStore) Save(conversation model.Conversation) error {
	key := rs.getNamespaceKey(conversation.TenantId, CONVERSATION)
	ctx := context.Background()
	data, err := rs.encDec.Encode(conversation)
	if err != nil {
		return err
	}
	pipe := rs.redisClient.Pipeline()
	pipe.HSet(ctx, key, conversation.Id, data)
	if conversation.Open {
		pipe.HSet(ctx, rs.getNamespaceKey(conversation.TenantId, ACTIVE_CONVERSATION), conversation.ContactId, conversation.Id)
	} else {
		pipe.HDel(ctx, rs.getNamespaceKey(conversation.TenantId, ACTIVE_CONVERSATION), conversation.ContactId)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisConversationStore) Get(tenantId string, conversationId string) (*model.Conversation, error) {
	key := rs.getNamespaceKey(tenantId, CONVERSATION)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, conversationId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "conversation", Id: conversationId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encDec.Decode([]byte(val))
}

func (rs *redisConversationStore) GetActive(tenantId string, contactId string) (*model.Conversation, error) {
	key := rs.getNamespaceKey(tenantId, ACTIVE_CONVERSATION)
	ctx := context.Background()
	conversationId, err := rs.redisClient.HGet(ctx, key, contactId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "active conversation", Id: contactId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.Get(tenantId, conversationId)
}

func (rs *redisConversationStore) UpdateActivity(tenantId string, conversationId string, lastMessage string, at time.Time) error {
	conversation, err := rs.Get(tenantId, conversationId)
	if err != nil {
		return err
	}
	conversation.LastMessage = lastMessage
	conversation.LastActivityAt = at
	return rs.Save(*conversation)
}
