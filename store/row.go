package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/vpalmerio/MoveGameDB/game"
)

// Replicated table names.
const (
	TableEntity = "entity"
	TableCircle = "circle"
	TableFood   = "food"
	TablePlayer = "player"
	TableConfig = "config"
)

// Tables the client mirrors, in subscription order.
var TableNames = []string{TablePlayer, TableCircle, TableFood, TableConfig, TableEntity}

// rawRow is a decoded-but-unnormalized wire row. Backend drafts disagree on
// field naming (playerId vs player_id), so every lookup takes the accepted
// spellings and the first hit wins. Nothing past this file sees wire names.
type rawRow map[string]any

func parseRaw(data json.RawMessage) (rawRow, error) {
	var m rawRow
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse row: %w", err)
	}
	return m, nil
}

func (r rawRow) num(keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case string:
			// u64 columns arrive as strings once they outgrow JSON numbers.
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func (r rawRow) str(keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := r[k].(string); ok {
			return s, true
		}
	}
	return "", false
}

func (r rawRow) vec(keys ...string) (game.Vector2, bool) {
	for _, k := range keys {
		m, ok := r[k].(map[string]any)
		if !ok {
			continue
		}
		x, xok := m["x"].(float64)
		y, yok := m["y"].(float64)
		if xok && yok {
			return game.Vector2{X: x, Y: y}, true
		}
	}
	return game.Vector2{}, false
}

// identity accepts either a plain hex string or the SDK's wrapped object
// form {"__identity__": "0x…"}.
func (r rawRow) identity(keys ...string) (string, bool) {
	for _, k := range keys {
		switch v := r[k].(type) {
		case string:
			return v, true
		case map[string]any:
			if s, ok := v["__identity__"].(string); ok {
				return s, true
			}
		}
	}
	return "", false
}

// DecodeEntity normalizes an entity wire row. A row without a usable
// entityId cannot be mirrored and is rejected; missing mass or position
// just zero out, leaving the row visibly incomplete for composers to skip.
func DecodeEntity(data json.RawMessage) (game.Entity, error) {
	r, err := parseRaw(data)
	if err != nil {
		return game.Entity{}, err
	}
	id, ok := r.num("entityId", "entity_id")
	if !ok {
		return game.Entity{}, fmt.Errorf("entity row missing entityId")
	}
	ent := game.Entity{EntityID: uint64(id)}
	ent.Mass, _ = r.num("mass")
	ent.Position, _ = r.vec("position")
	return ent, nil
}

func DecodeCircle(data json.RawMessage) (game.Circle, error) {
	r, err := parseRaw(data)
	if err != nil {
		return game.Circle{}, err
	}
	id, ok := r.num("entityId", "entity_id")
	if !ok {
		return game.Circle{}, fmt.Errorf("circle row missing entityId")
	}
	c := game.Circle{EntityID: uint64(id)}
	if pid, ok := r.num("playerId", "player_id"); ok {
		c.PlayerID = uint32(pid)
	}
	c.Direction, _ = r.vec("direction")
	c.Speed, _ = r.num("speed")
	if ts, ok := r.num("lastSplitTime", "last_split_time"); ok {
		c.LastSplitTime = int64(ts)
	}
	return c, nil
}

func DecodeFood(data json.RawMessage) (game.Food, error) {
	r, err := parseRaw(data)
	if err != nil {
		return game.Food{}, err
	}
	id, ok := r.num("entityId", "entity_id")
	if !ok {
		return game.Food{}, fmt.Errorf("food row missing entityId")
	}
	return game.Food{EntityID: uint64(id)}, nil
}

func DecodePlayer(data json.RawMessage) (game.Player, error) {
	r, err := parseRaw(data)
	if err != nil {
		return game.Player{}, err
	}
	ident, ok := r.identity("identity")
	if !ok {
		return game.Player{}, fmt.Errorf("player row missing identity")
	}
	p := game.Player{Identity: ident}
	if pid, ok := r.num("playerId", "player_id"); ok {
		p.PlayerID = uint32(pid)
	}
	p.Name, _ = r.str("name")
	p.WalletAddress, _ = r.str("walletAddress", "wallet_address", "aptosAddress", "aptos_address")
	return p, nil
}

func DecodeConfig(data json.RawMessage) (game.Config, error) {
	r, err := parseRaw(data)
	if err != nil {
		return game.Config{}, err
	}
	var cfg game.Config
	if id, ok := r.num("id"); ok {
		cfg.ID = uint32(id)
	}
	cfg.WorldSize, _ = r.num("worldSize", "world_size")
	if target, ok := r.num("initialFoodTarget", "initialFoodCount", "initial_food_target", "initial_food_count"); ok {
		cfg.InitialFoodTarget = uint32(target)
	}
	return cfg, nil
}
