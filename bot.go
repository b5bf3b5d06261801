package main

const (
	botIDBase          = 1000000
	botHoldDistance    = 2.5 // stop approaching inside this range
	botStrafeIntensity = 0.5
	botFireRangeFactor = 0.9
)

// updateBots synthesizes one input packet per configured bot and runs it
// through the same processInput path as human input, so bots obey
// identical movement, collision and combat rules.
func (e *Engine) updateBots(dt float32) {
	if e.cfg.BotCount == 0 {
		return
	}
	tick := e.tick.Load()
	for i := uint32(0); i < e.cfg.BotCount; i++ {
		botID := uint32(botIDBase) + i
		bot := e.ensureBot(botID)
		if bot == nil {
			continue
		}
		if !bot.Active {
			if tick < bot.RespawnTick {
				continue
			}
			e.respawn(bot)
		}

		var target *PlayerState
		bestDist2 := float32(maxFloat32)
		for j := range e.players {
			p := &e.players[j]
			if p.IsBot || !p.Active || p.Health <= 0 {
				continue
			}
			dx := p.X - bot.X
			dz := p.Z - bot.Z
			d2 := dx*dx + dz*dz
			if d2 < bestDist2 {
				bestDist2 = d2
				target = p
			}
		}

		ai := InputPacket{PlayerID: botID, Seq: tick}
		if target != nil {
			dx := target.X - bot.X
			dz := target.Z - bot.Z
			ai.Yaw = atan2f(-dx, -dz)
			dist := sqrtf(bestDist2)
			if dist > botHoldDistance {
				ai.MoveZ = 1
			}
			// Alternate strafe direction on a multi-second cadence.
			if (tick/60)%2 == 0 {
				ai.MoveX = botStrafeIntensity
			} else {
				ai.MoveX = -botStrafeIntensity
			}
			ai.Fire = dist < gunForSelector(bot.Weapon).Range*botFireRangeFactor
		} else {
			ai.Yaw = bot.Yaw
			ai.Pitch = bot.Pitch
		}
		e.processInput(ai, dt)
	}
}

// ensureBot finds or creates the bot for a deterministic id. Creation is
// skipped once the player cap is reached.
func (e *Engine) ensureBot(botID uint32) *PlayerState {
	if p := e.findPlayer(botID); p != nil {
		return p
	}
	if uint32(len(e.players)) >= e.cfg.MaxPlayers {
		return nil
	}
	e.players = append(e.players, PlayerState{
		ID:            botID,
		Health:        playerMaxHealth,
		Active:        true,
		LastInputTick: e.tick.Load(),
		IsBot:         true,
	})
	bot := &e.players[len(e.players)-1]
	e.respawn(bot)
	return bot
}

const maxFloat32 = 3.4e38
