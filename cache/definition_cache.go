package cache

import (
	"time"

	c "github.com/patrickmn/go-cache"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
)

// DefinitionCache is a read cache in front of the definition store. Single
// definition reads are served from memory; list queries always hit the store
// so trigger matching sees fresh definitions.
type DefinitionCache struct {
	store persistence.DefinitionStore
	cache *c.Cache
}

var _ persistence.DefinitionStore = new(DefinitionCache)

func NewDefinitionCache(store persistence.DefinitionStore, ttl time.Duration) *DefinitionCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DefinitionCache{
		store: store,
		cache: c.New(ttl, 10*time.Minute),
	}
}

func (d *DefinitionCache) key(tenantId string, flowId string) string {
	return tenantId + ":" + flowId
}

func (d *DefinitionCache) Get(tenantId string, flowId string) (*model.FlowDefinition, error) {
	if cached, found := d.cache.Get(d.key(tenantId, flowId)); found {
		def := cached.(model.FlowDefinition)
		return &def, nil
	}
	def, err := d.store.Get(tenantId, flowId)
	if err != nil {
		return nil, err
	}
	d.cache.SetDefault(d.key(tenantId, flowId), *def)
	return def, nil
}

func (d *DefinitionCache) Save(def model.FlowDefinition) error {
	if err := d.store.Save(def); err != nil {
		return err
	}
	d.cache.Delete(d.key(def.TenantId, def.Id))
	return nil
}

func (d *DefinitionCache) Delete(tenantId string, flowId string) error {
	if err := d.store.Delete(tenantId, flowId); err != nil {
		return err
	}
	d.cache.Delete(d.key(tenantId, flowId))
	return nil
}

func (d *DefinitionCache) ListActiveByTrigger(tenantId string, trigger model.TriggerType) ([]model.FlowDefinition, error) {
	return d.store.ListActiveByTrigger(tenantId, trigger)
}

func (d *DefinitionCache) ListTenants() ([]string, error) {
	return d.store.ListTenants()
}
