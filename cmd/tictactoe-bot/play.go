package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"tictactoe-client/internal/config"
	"tictactoe-client/internal/gameclient"
	"tictactoe-client/internal/protocol"
	"tictactoe-client/internal/reconnect"
	"tictactoe-client/internal/session"
)

const (
	statusActive    = "active"
	statusCompleted = "completed"

	// Pause before nudging the reconnection controller after a drop.
	retryPause = time.Second
)

var errGaveUp = errors.New("gave up reconnecting")

func playCommand() *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "create (or join) a game and play random legal-looking moves until it ends",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Usage: "bot or multiplayer"},
			&cli.StringFlag{Name: "symbol", Usage: "x or o"},
			&cli.StringFlag{Name: "join", Usage: "join this open game instead of creating one"},
			&cli.BoolFlag{Name: "first-open", Usage: "join the first open multiplayer game"},
		},
		Action: play,
	}
}

func play(ctx context.Context, cmd *cli.Command) error {
	botCfg, err := config.LoadBot()
	if err != nil {
		return err
	}
	if cmd.IsSet("mode") {
		botCfg.Mode = cmd.String("mode")
	}
	if cmd.IsSet("symbol") {
		botCfg.Symbol = cmd.String("symbol")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newPlayer(botCfg)
	client, done, err := setup(gameclient.Handlers{OnMessage: p.onMessage, OnError: p.onError})
	if err != nil {
		return err
	}
	defer done()

	focus := reconnect.NewSignal(reconnect.TriggerFocus, true)
	online := reconnect.NewSignal(reconnect.TriggerOnline, true)
	client.Attach(focus, online)
	stopSignals := watchLiveness(focus, online)
	defer stopSignals()

	user, err := signIn(ctx, client, botCfg.GuestLogin)
	if err != nil {
		return err
	}
	p.userID = user.ID

	game, err := openGame(ctx, client, cmd, botCfg)
	if err != nil {
		return err
	}
	log.Info().Str("game_id", game.ID).Str("user", user.Username).Msg("bot_playing")
	return p.run(ctx, client, online)
}

func openGame(ctx context.Context, client *gameclient.Client, cmd *cli.Command, cfg config.BotConfig) (protocol.Game, error) {
	if id := cmd.String("join"); id != "" {
		return client.JoinGame(ctx, id)
	}
	if cmd.Bool("first-open") {
		open, err := client.API().ListOpenGames(ctx)
		if err != nil {
			return protocol.Game{}, err
		}
		if len(open) == 0 {
			return protocol.Game{}, errors.New("no open games")
		}
		return client.JoinGame(ctx, open[0].ID)
	}
	return client.StartGame(ctx, cfg.Mode, cfg.Symbol)
}

type player struct {
	cfg     config.BotConfig
	userID  string
	events  chan protocol.Envelope
	errs    chan string
	rnd     *rand.Rand
	greeted bool
}

func newPlayer(cfg config.BotConfig) *player {
	return &player{
		cfg:    cfg,
		events: make(chan protocol.Envelope, 64),
		errs:   make(chan string, 8),
		rnd:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	}
}

func (p *player) onMessage(env protocol.Envelope) {
	p.events <- env
}

func (p *player) onError(message string, severity session.Severity) {
	log.Warn().Str("severity", string(severity)).Msg(message)
	select {
	case p.errs <- message:
	default:
	}
}

func (p *player) run(ctx context.Context, client *gameclient.Client, online *reconnect.Signal) error {
	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.errs:
			if client.Reconnector().Exhausted() {
				return errGaveUp
			}
		case <-retry:
			retry = nil
			online.Set(false)
			online.Set(true)
		case env := <-p.events:
			switch msg := env.(type) {
			case protocol.ConnectionStatus:
				switch msg.Status {
				case protocol.StateConnected:
					if !p.greeted && p.cfg.Greeting != "" {
						p.greeted = true
						_ = client.SendChat(p.cfg.Greeting)
					}
				case protocol.StateDisconnected, protocol.StateFailed:
					log.Info().Str("status", msg.Status.String()).Int("code", msg.Code).Str("reason", msg.Reason).Msg("bot_connection_lost")
					retry = time.After(retryPause)
				}
			case protocol.GameState:
				if msg.Game.Status == statusCompleted {
					fmt.Printf("game %s over, winner: %s\n", msg.Game.ID, msg.Game.Winner)
					return nil
				}
				if pos, ok := p.choose(msg.Game); ok {
					time.Sleep(p.cfg.MoveDelay)
					if err := client.SendMove(pos); err != nil {
						log.Warn().Err(err).Int("position", pos).Msg("bot_move_not_sent")
					}
				}
			case protocol.Chat:
				log.Info().Str("sender", msg.Sender).Str("text", msg.Text).Msg("bot_chat")
			case protocol.ServerError:
				log.Warn().Str("message", msg.Message).Msg("bot_server_error")
			case protocol.PlayerConnected, protocol.PlayerDisconnected:
				log.Info().Str("type", string(msg.Type())).Msg("bot_opponent_presence")
			}
		}
	}
}

// choose picks a random empty cell when it is this player's turn.
func (p *player) choose(g protocol.Game) (int, bool) {
	if g.Status != statusActive || g.CurrentPlayer != p.userID {
		return 0, false
	}
	var free []int
	for i, cell := range g.Board {
		if cell == "" {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return 0, false
	}
	return free[p.rnd.IntN(len(free))], true
}
