package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// Encode renders an envelope as wire text. Every string field must be valid
// UTF-8; otherwise the error matches ErrInvalidText.
func Encode(env Envelope) ([]byte, error) {
	if env != nil {
		if err := checkText(env); err != nil {
			return nil, err
		}
	}
	switch e := env.(type) {
	case Move:
		pos := e.Position
		return json.Marshal(moveMessage{Type: TypeMove, Position: &pos})
	case Chat:
		text := e.Text
		return json.Marshal(chatMessage{Type: TypeChat, Message: &text, Sender: e.Sender})
	case ConnectionStatus:
		status, err := e.Status.MarshalText()
		if err != nil {
			return nil, err
		}
		return json.Marshal(connectionStatusMessage{Type: TypeConnectionStatus, Status: string(status), Code: e.Code, Reason: e.Reason})
	case GameState:
		game := e.Game
		return json.Marshal(gameStateMessage{Type: TypeGameState, Game: &game, Disconnection: e.Disconnection, Message: e.Message})
	case ServerError:
		return json.Marshal(errorMessage{Type: TypeError, Message: e.Message})
	case PlayerConnected:
		return json.Marshal(playerMessage{Type: TypePlayerConnected, Player: e.Player})
	case PlayerDisconnected:
		return json.Marshal(playerMessage{Type: TypePlayerDisconnected, Player: e.Player})
	case nil:
		return nil, errors.New("encode nil envelope")
	default:
		return nil, fmt.Errorf("encode unsupported envelope %T", env)
	}
}

// Decode parses wire text. Every failure is a *DecodeError.
func Decode(data []byte) (Envelope, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, malformed("", errors.New("empty payload"))
	}
	var base struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		return nil, malformed("", err)
	}
	if base.Type == nil || *base.Type == "" {
		return nil, malformed("", errors.New("missing type"))
	}

	typ := *base.Type
	switch Type(typ) {
	case TypeMove:
		var msg moveMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, malformed(typ, err)
		}
		if msg.Position == nil {
			return nil, malformed(typ, errors.New("missing position"))
		}
		return Move{Position: *msg.Position}, nil
	case TypeChat:
		var msg chatMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, malformed(typ, err)
		}
		if msg.Message == nil {
			return nil, malformed(typ, errors.New("missing message"))
		}
		return Chat{Text: *msg.Message, Sender: msg.Sender}, nil
	case TypeConnectionStatus:
		var msg connectionStatusMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, malformed(typ, err)
		}
		status, err := ParseConnectionState(msg.Status)
		if err != nil {
			return nil, malformed(typ, err)
		}
		return ConnectionStatus{Status: status, Code: msg.Code, Reason: msg.Reason}, nil
	case TypeGameState:
		var msg gameStateMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, malformed(typ, err)
		}
		if msg.Game == nil {
			return nil, malformed(typ, errors.New("missing game"))
		}
		return GameState{Game: *msg.Game, Disconnection: msg.Disconnection, Message: msg.Message}, nil
	case TypeError:
		var msg errorMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, malformed(typ, err)
		}
		return ServerError{Message: msg.Message}, nil
	case TypePlayerConnected, TypePlayerDisconnected:
		var msg playerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, malformed(typ, err)
		}
		if Type(typ) == TypePlayerConnected {
			return PlayerConnected{Player: msg.Player}, nil
		}
		return PlayerDisconnected{Player: msg.Player}, nil
	default:
		return nil, &DecodeError{Kind: ErrUnknownType, Type: typ}
	}
}

func checkText(env Envelope) error {
	var fields []string
	switch e := env.(type) {
	case Chat:
		fields = []string{e.Text, e.Sender}
	case ConnectionStatus:
		fields = []string{e.Reason}
	case GameState:
		fields = append(gameText(e.Game), e.Message)
	case ServerError:
		fields = []string{e.Message}
	case PlayerConnected:
		fields = []string{e.Player}
	case PlayerDisconnected:
		fields = []string{e.Player}
	}
	for _, f := range fields {
		if !utf8.ValidString(f) {
			return fmt.Errorf("%w: %s %q", ErrInvalidText, env.Type(), f)
		}
	}
	return nil
}

func gameText(g Game) []string {
	out := []string{g.ID, g.Type, g.Status, g.CurrentPlayer, g.Winner, g.CreatedAt, g.CreatedBy, g.Symbol}
	out = append(out, g.Board...)
	for k, v := range g.Players {
		out = append(out, k, v)
	}
	for _, m := range g.Moves {
		out = append(out, m.Player, m.Symbol, m.Action, m.Timestamp)
	}
	return out
}
