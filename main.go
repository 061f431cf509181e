package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	dispatchx "github.com/gecortesh/chatbot-ecommerce/agent/dispatch"
	llmx "github.com/gecortesh/chatbot-ecommerce/agent/llm"
	"github.com/gecortesh/chatbot-ecommerce/agent/orchestrator"
	registryx "github.com/gecortesh/chatbot-ecommerce/agent/registry"
	statex "github.com/gecortesh/chatbot-ecommerce/agent/state"
	configx "github.com/gecortesh/chatbot-ecommerce/pkg/config"
	_ "github.com/gecortesh/chatbot-ecommerce/pkg/logger/autoload"
	"github.com/gecortesh/chatbot-ecommerce/store/jsonstore"
	"github.com/gecortesh/chatbot-ecommerce/store/pgstore"

	contractx "github.com/gecortesh/chatbot-ecommerce/agent/contract"
)

type AppConfig struct {
	DataBackend    string `envconfig:"DATA_BACKEND" default:"json"`
	SessionBackend string `envconfig:"SESSION_BACKEND" default:"memory"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	orderStore := newOrderStore(appCfg.DataBackend)
	sessionStore := newSessionStore(appCfg.SessionBackend)

	reg := registryx.New()

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	gateway, err := llmx.NewModelGateway(context.Background(), *llmCfg, reg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize model gateway")
	}

	dispatcher, err := dispatchx.New(orderStore)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize dispatcher")
	}

	svc, err := orchestrator.New(sessionStore, gateway, reg, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize orchestrator")
	}

	runChatLoop(svc)
}

func newOrderStore(backend string) contractx.OrderStore {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "json":
		cfg := configx.MustNew[jsonstore.Config]("JSONSTORE")
		store, err := jsonstore.New(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize json store")
		}
		return store
	case "postgres":
		cfg := configx.MustNew[pgstore.Config]("PGSTORE")
		store, err := pgstore.New(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize postgres store")
		}
		return store
	default:
		log.Fatal().Str("backend", backend).Msg("unsupported DATA_BACKEND")
		return nil
	}
}

func newSessionStore(backend string) statex.Store {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "memory":
		return statex.NewMemoryStore()
	case "redis":
		cfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		store, err := statex.NewUpstashRedisStore(*cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("initialize redis session store")
		}
		return store
	default:
		log.Fatal().Str("backend", backend).Msg("unsupported SESSION_BACKEND")
		return nil
	}
}

func runChatLoop(svc *orchestrator.Orchestrator) {
	sessionID := fmt.Sprintf("cli_%d", time.Now().Unix())

	fmt.Println("Customer service chat. I can track orders or cancel them.")
	fmt.Println("Type 'quit' to exit or 'reset' to start a new session.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		text := strings.TrimSpace(scanner.Text())
		switch {
		case text == "":
			continue
		case strings.EqualFold(text, "quit"), strings.EqualFold(text, "exit"):
			fmt.Println("Goodbye!")
			return
		case strings.EqualFold(text, "reset"):
			sessionID = fmt.Sprintf("cli_%d", time.Now().Unix())
			fmt.Println("Started a new session.")
			continue
		}

		reply, err := svc.HandleMessage(context.Background(), sessionID, text)
		if err != nil {
			log.Error().Err(err).Str("session_id", sessionID).Msg("handle message")
			fmt.Println("Sorry, something went wrong on my side. Please try again.")
			continue
		}
		fmt.Println(reply)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
}
