package agent

import (
	"net/http"
	"sync"
	"time"

	rd "github.com/go-redis/redis/v9"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/action"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/cache"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/config"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/connector"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/dispatch"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/flow"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/logger"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/model"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/persistence/redis"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/rest"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/scheduler"
	"github.com/renoribeiro/whatsapp-automation-v0-sub000/trigger"
)

// Agent wires the stores, the dispatcher, the engine and the periodic
// workers into one process.
type Agent struct {
	Config config.Config

	redisClient   rd.UniversalClient
	definitions   persistence.DefinitionStore
	contacts      persistence.ContactStore
	tags          persistence.TagStore
	messages      persistence.MessageStore
	conversations persistence.ConversationStore
	connections   persistence.ConnectionStore
	lastRuns      persistence.SchedulerStore

	registry   *connector.Registry
	dispatcher *dispatch.Dispatcher
	engine     *flow.Engine
	matcher    *trigger.Matcher
	msgSched   *scheduler.MessageScheduler
	scheduler  *scheduler.Scheduler
	monitor    *connector.Monitor
	httpServer *rest.Server
	actions    *action.Registry

	shutdown     bool
	shutdownLock sync.Mutex
	wg           sync.WaitGroup
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupStorage,
		a.setupConnectors,
		a.setupDispatcher,
		a.setupEngine,
		a.setupScheduler,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupStorage() error {
	a.redisClient = rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs: a.Config.RedisConfig.Addrs,
	})
	namespace := a.Config.RedisConfig.Namespace
	a.definitions = cache.NewDefinitionCache(
		redis.NewRedisDefinitionStoreFromClient(a.redisClient, namespace), a.Config.DefinitionTTL)
	a.contacts = redis.NewRedisContactStoreFromClient(a.redisClient, namespace)
	a.tags = redis.NewRedisTagStoreFromClient(a.redisClient, namespace)
	a.messages = redis.NewRedisMessageStoreFromClient(a.redisClient, namespace)
	a.conversations = redis.NewRedisConversationStoreFromClient(a.redisClient, namespace)
	a.connections = redis.NewRedisConnectionStoreFromClient(a.redisClient, namespace)
	a.lastRuns = redis.NewRedisSchedulerStoreFromClient(a.redisClient, namespace)
	return nil
}

func (a *Agent) setupConnectors() error {
	a.registry = connector.NewRegistry()
	a.registry.Register(model.CONNECTOR_BRIDGE, connector.NewBridgeConnector(a.Config.BridgeBaseUrl, nil))
	a.registry.Register(model.CONNECTOR_CLOUD, connector.NewCloudConnector(a.Config.CloudBaseUrl, nil))
	a.monitor = connector.NewMonitor(a.connections, a.registry, a.Config.MonitorTick, &a.wg)
	return nil
}

func (a *Agent) setupDispatcher() error {
	namespace := a.Config.RedisConfig.Namespace
	queue := redis.NewRedisQueueFromClient(a.redisClient, namespace)
	delayQueue := redis.NewRedisDelayQueueFromClient(a.redisClient, namespace)
	a.dispatcher = dispatch.NewDispatcher(queue, delayQueue, dispatch.Options{
		WorkerCount:  a.Config.WorkerCount,
		Capacity:     a.Config.WorkerCapacity,
		BatchSize:    a.Config.BatchSize,
		MaxAttempts:  a.Config.MaxAttempts,
		BaseBackoff:  a.Config.BaseBackoff,
		PollInterval: a.Config.PollInterval,
	}, &a.wg)
	delivery := dispatch.NewDeliveryService(a.registry, a.messages, a.contacts, a.conversations, a.connections)
	a.dispatcher.RegisterHandler(model.JOB_SEND_MESSAGE, delivery.HandleSendMessage)
	a.dispatcher.RegisterHandler(model.JOB_SEND_SCHEDULED, delivery.HandleSendScheduled)
	return nil
}

func (a *Agent) setupEngine() error {
	a.actions = action.NewRegistry(
		action.NewSendMessageHandler(a.messages, a.conversations, a.connections, a.dispatcher),
		action.NewAddTagHandler(a.contacts, a.tags),
		action.NewRemoveTagHandler(a.contacts),
		action.NewWaitHandler(),
		action.NewConditionHandler(),
		action.NewWebhookHandler(&http.Client{Timeout: 10 * time.Second}),
	)
	a.engine = flow.NewEngine(a.definitions, a.contacts, a.conversations, a.actions, a.dispatcher, a.Config.MaxSteps)
	a.dispatcher.RegisterHandler(model.JOB_EXECUTE_FLOW, a.engine.HandleExecuteFlow)
	a.matcher = trigger.NewMatcher(a.definitions, a.conversations, a.dispatcher)
	return nil
}

func (a *Agent) setupScheduler() error {
	a.scheduler = scheduler.NewScheduler(a.definitions, a.contacts, a.lastRuns, a.dispatcher,
		a.Config.SchedulerTick, &a.wg)
	a.msgSched = scheduler.NewMessageScheduler(a.messages, a.dispatcher)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.matcher, a.engine, a.msgSched, a.definitions, a.actions)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	if err := a.dispatcher.Start(); err != nil {
		return err
	}
	if err := a.scheduler.Start(); err != nil {
		return err
	}
	if err := a.monitor.Start(); err != nil {
		return err
	}
	go func() {
		err := a.httpServer.Start()
		if err != nil {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down agent")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.httpServer.Stop,
		a.scheduler.Stop,
		a.monitor.Stop,
		a.dispatcher.Stop,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("waiting for all services to shutdown...")
	a.wg.Wait()
	return a.redisClient.Close()
}
