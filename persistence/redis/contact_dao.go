package redis

import (
	"context"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/util"
)

const CONTACT string = "CONTACT"
const CONTACT_TAGS string = "CONTACT_TAGS"

type redisContactStore struct {
	*baseDao
	encDec util.EncoderDecoder[model.Contact]
}

var _ persistence.ContactStore = new(redisContactStore)

func NewRedisContactStore(conf Config) *redisContactStore {
	return &redisContactStore{
		baseDao: newBaseDao(conf),
		encDec:  util.NewJsonEncoderDecoder[model.Contact](),
	}
}

func NewRedisContactStoreFromClient(client rd.UniversalClient, namespace string) *redisContactStore {
	return &redisContactStore{
		baseDao: newBaseDaoFromClient(client, namespace),
		encDec:  util.NewJsonEncoderDecoder[model.Contact](),
	}
}

func (rs *redisContactStore) Save(contact model.Contact) error {
	key := rs.getNamespaceKey(contact.TenantId, CONTACT)
	ctx := context.Background()
	data, err := rs.encDec.Encode(contact)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, contact.Id, data).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisContactStore) Get(tenantId string, contactId string) (*model.Contact, error) {
	key := rs.getNamespaceKey(tenantId, CONTACT)
	ctx := context.Background()
	val, err := rs.redisClient.HGet(ctx, key, contactId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.NotFoundError{Kind: "contact", Id: contactId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return rs.encDec.Decode([]byte(val))
}

// ListByFilter scans the tenant's contacts and keeps those matching every
// configured filter, up to limit.
func (rs *redisContactStore) ListByFilter(tenantId string, filter model.ContactFilter, limit int) ([]model.Contact, error) {
	key := rs.getNamespaceKey(tenantId, CONTACT)
	ctx := context.Background()
	vals, err := rs.redisClient.HVals(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var contacts []model.Contact
	for _, val := range vals {
		if len(contacts) >= limit {
			break
		}
		contact, err := rs.encDec.Decode([]byte(val))
		if err != nil {
			continue
		}
		if filter.LeadSource != "" && contact.LeadSource != filter.LeadSource {
			continue
		}
		if len(filter.TagIds) > 0 {
			match, err := rs.hasAnyTag(tenantId, contact.Id, filter.TagIds)
			if err != nil {
				return nil, err
			}
			if !match {
				continue
			}
		}
		contacts = append(contacts, *contact)
	}
	return contacts, nil
}

func (rs *redisContactStore) hasAnyTag(tenantId string, contactId string, tagIds []string) (bool, error) {
	key := rs.getNamespaceKey(tenantId, CONTACT_TAGS, contactId)
	ctx := context.Background()
	for _, tagId := range tagIds {
		ok, err := rs.redisClient.SIsMember(ctx, key, tagId).Result()
		if err != nil && !errors.Is(err, rd.Nil) {
			return false, persistence.StorageLayerError{Message: err.Error()}
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// UpsertTag is idempotent: adding the same tag twice leaves a single
// association.
func (rs *redisContactStore) UpsertTag(tenantId string, contactId string, tagId string) error {
	key := rs.getNamespaceKey(tenantId, CONTACT_TAGS, contactId)
	ctx := context.Background()
	if err := rs.redisClient.SAdd(ctx, key, tagId).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisContactStore) DeleteTag(tenantId string, contactId string, tagId string) error {
	key := rs.getNamespaceKey(tenantId, CONTACT_TAGS, contactId)
	ctx := context.Background()
	if err := rs.redisClient.SRem(ctx, key, tagId).Err(); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisContactStore) Tags(tenantId string, contactId string) ([]string, error) {
	key := rs.getNamespaceKey(tenantId, CONTACT_TAGS, contactId)
	ctx := context.Background()
	tags, err := rs.redisClient.SMembers(ctx, key).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return tags, nil
}
