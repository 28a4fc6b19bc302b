package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sparkbot/internal/adapters/generator"
	"sparkbot/internal/adapters/telegram"
	"sparkbot/internal/adapters/webex"
	"sparkbot/internal/core/domain/command"
	"sparkbot/internal/core/domain/commands"
	"sparkbot/internal/core/service"
	"strings"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting sparkbot...")

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("bot.platform", "webex")
	viper.SetDefault("receiver.address", ":8080")
	viper.SetDefault("receiver.path", webex.DefaultPath)
	viper.SetDefault("openrouter.model", "openai/gpt-4.1-mini")
	viper.SetDefault("openrouter.timeout", "2m")

	log.Info().Msg("reading config file...")
	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Msg("could not read config file")
		}
		log.Warn().Msg("no config file found, using environment only")
	}

	var logLevel zerolog.Level

	switch viper.GetString("bot.log_level") {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry, err := newRegistry()
	if err != nil {
		log.Fatal().Err(err).Msg("failed registering commands")
	}

	dispatcher := command.NewDispatcher(registry)

	switch platform := viper.GetString("bot.platform"); platform {
	case "webex":
		err = runWebex(ctx, dispatcher)
	case "telegram":
		err = runTelegram(ctx, dispatcher)
	default:
		log.Fatal().Str("platform", platform).Msg("unknown platform")
	}

	if err != nil {
		log.Fatal().Err(err).Msg("bot stopped")
	}

	log.Info().Msg("bot stopped")
}

func newRegistry() (*command.Registry, error) {
	var opts []command.RegistryOption
	if viper.GetBool("bot.help_all_alias") {
		opts = append(opts, command.WithHelpAllAlias())
	}
	if msg := viper.GetString("bot.not_found_message"); msg != "" {
		opts = append(opts, command.WithNotFoundMessage(msg))
	}

	registry := command.NewRegistry(opts...)
	if viper.GetBool("bot.remove_help") {
		registry.RemoveHelp()
	}

	type binding struct {
		names   []string
		handler command.Handler
	}

	bindings := []binding{
		{[]string{"ping"}, commands.NewPing()},
		{[]string{"echo", "say"}, commands.NewEcho()},
		{[]string{"whoami"}, commands.NewWhoAmI()},
		{[]string{"countdown"}, commands.NewCountdown(time.Second)},
		{[]string{"debug"}, commands.NewDebug(registry)},
	}

	if apiKey := viper.GetString("openrouter.api_key"); apiKey != "" {
		timeout, err := time.ParseDuration(viper.GetString("openrouter.timeout"))
		if err != nil {
			return nil, errors.New("invalid timeout for openrouter in config")
		}

		gen := generator.NewOpenRouterGenerator(apiKey,
			viper.GetString("openrouter.model"),
			viper.GetString("openrouter.system_prompt"))

		bindings = append(bindings, binding{[]string{"ask"}, commands.NewAskHandler(gen, timeout).Handler()})
	} else {
		log.Info().Msg("no openrouter api key configured, ask command disabled")
	}

	for _, b := range bindings {
		if err := registry.Register(b.names, b.handler); err != nil {
			return nil, err
		}
	}

	return registry, nil
}

func newWorker(ctx context.Context, p service.WorkerParams) (*service.CommandWorker, error) {
	authorizer, err := service.NewAuthorizer(p.Sink)
	if err != nil {
		return nil, err
	}
	p.Authorizer = authorizer

	if limiter := service.NewRateLimiter(ctx, p.Sink); limiter != nil {
		p.Limiter = limiter
	}

	return service.NewCommandWorker(p)
}

func runWebex(ctx context.Context, dispatcher *command.Dispatcher) error {
	var opts []webex.Option
	if baseURL := viper.GetString("webex.base_url"); baseURL != "" {
		opts = append(opts, webex.WithBaseURL(baseURL))
	}

	client := webex.NewClient(viper.GetString("webex.access_token"), opts...)

	me, err := client.Me(ctx)
	if err != nil {
		return err
	}
	log.Info().Str("botId", me.ID).Str("name", me.DisplayName).Msg("authenticated")

	err = dispatcher.Registry().Register([]string{"whois"}, webex.NewWhoisCommand(client))
	if err != nil {
		return err
	}

	worker, err := newWorker(ctx, service.WorkerParams{
		Dispatcher: dispatcher,
		Sink:       client,
		Identity:   client,
		Messages:   client,
		Self:       me,
	})
	if err != nil {
		return err
	}

	skip := viper.GetString("receiver.skip_setup")
	if skip == "all" {
		log.Info().Msg("receiver setup skipped")
		<-ctx.Done()
		return nil
	}

	path := viper.GetString("receiver.path")

	var secret []byte
	if skip == "webhook" {
		secret = []byte(viper.GetString("receiver.secret"))
	} else {
		secret, err = webex.NewSecret()
		if err != nil {
			return err
		}

		rootURL := viper.GetString("webex.root_url")
		if rootURL == "" {
			log.Warn().Msg("no webhook root url configured, not registering a webhook")
		} else if _, err := webex.RegisterWebhook(ctx, client, rootURL, path, secret); err != nil {
			return err
		}
	}

	receiver := webex.NewReceiver(worker, secret, me.ID)

	err = webex.Serve(ctx, viper.GetString("receiver.address"), path, receiver)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

func runTelegram(ctx context.Context, dispatcher *command.Dispatcher) error {
	b, err := bot.New(viper.GetString("telegram.bot_token"), bot.WithDefaultHandler(noOpHandler))
	if err != nil {
		return err
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return err
	}

	s := telegram.NewSender(b)

	worker, err := newWorker(ctx, service.WorkerParams{
		Dispatcher: dispatcher,
		Sink:       s,
		Self:       telegram.Self(me),
	})
	if err != nil {
		return err
	}

	h := telegram.NewHandler(worker, s, me.ID, me.Username)

	b.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.Handle)
	b.RegisterHandler(bot.HandlerTypePhotoCaption, "", bot.MatchTypePrefix, h.Handle)

	log.Info().Str("username", me.Username).Msg("bot listening")
	b.Start(ctx)

	return nil
}

func noOpHandler(_ context.Context, _ *bot.Bot, _ *models.Update) {}
