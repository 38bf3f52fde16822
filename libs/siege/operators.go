package siege

import (
	"fmt"
	"strings"
)

type operator struct {
	name  string
	skill string
	label string
}

// operators is kept in alphabetical order; statistics queries list skills in this order.
var operators = []operator{
	{"ASH", "bonfirewallbreached", "Walls Breached"},
	{"BANDIT", "batterykill", "Battery Kills"},
	{"BLACKBEARD", "gunshieldblockdamage", "Damage Blocked"},
	{"BLITZ", "flashedenemy", "Enemies Flashed"},
	{"BUCK", "kill", "Shotgun Kills"},
	{"CAPITAO", "lethaldartkills", "Lethal Dart Kills"},
	{"CASTLE", "kevlarbarricadedeployed", "Barricades Deployed"},
	{"CAVEIRA", "interrogations", "Interrogations"},
	{"DOC", "teammaterevive", "Teammates Revived"},
	{"ECHO", "enemy_sonicburst_affected", "Enemies Sonic Bursted"},
	{"FROST", "dbno", "DBNOs From Traps"},
	{"FUZE", "clusterchargekill", "Cluster Charge Kills"},
	{"GLAZ", "sniperkill", "Sniper Kills"},
	{"HIBANA", "detonate_projectile", "Projectiles Detonated"},
	{"IQ", "gadgetspotbyef", "Gadgets Spotted"},
	{"JACKAL", "cazador_assist_kill", "Footprint Scan Assists"},
	{"JAGER", "gadgetdestroybycatcher", "Projectiles Destroyed"},
	{"KAPKAN", "boobytrapkill", "Boobytrap Kills"},
	{"MIRA", "black_mirror_gadget_deployed", "Black Mirrors Deployed"},
	{"MONTAGNE", "shieldblockdamage", "Damage Blocked"},
	{"MUTE", "gadgetjammed", "Gadgets Jammed"},
	{"PULSE", "heartbeatspot", "Heartbeat Spots"},
	{"ROOK", "armortakenteammate", "Armor Taken"},
	{"SLEDGE", "hammerhole", "Hammer Holes"},
	{"SMOKE", "poisongaskill", "Poison Gas Kills"},
	{"TACHANKA", "turretkill", "Turret Kills"},
	{"THATCHER", "gadgetdestroywithemp", "Gadgets Destroyed"},
	{"THERMITE", "reinforcementbreached", "Reinforcements Breached"},
	{"TWITCH", "gadgetdestroybyshockdrone", "Gadgets Destroyed With Shock Drone"},
	{"VALKYRIE", "camdeployed", "Cameras Deployed"},
}

var operatorsByName = func() map[string]operator {
	m := make(map[string]operator, len(operators))
	for _, op := range operators {
		m[op.name] = op
	}
	return m
}()

// Operators returns the operator names in table order.
func Operators() []string {
	names := make([]string, 0, len(operators))
	for _, op := range operators {
		names = append(names, op.name)
	}
	return names
}

func lookupOperator(name string) (operator, error) {
	op, ok := operatorsByName[strings.ToUpper(name)]
	if !ok {
		return operator{}, fmt.Errorf("%w: %q", ErrUnknownOperator, name)
	}
	return op, nil
}

// SkillName returns the statistics key of an operator's special ability counter.
func SkillName(name string) (string, error) {
	op, err := lookupOperator(name)
	if err != nil {
		return "", err
	}

	// JACKEL never matches JACKAL. Left alone until checked against the live API.
	switch op.name {
	case "JACKEL", "MIRA":
		return "operatorpvp_" + op.skill, nil
	default:
		return fmt.Sprintf("operatorpvp_%s_%s", strings.ToLower(op.name), op.skill), nil
	}
}

// OperatorLabel returns the display label of an operator's special ability counter.
func OperatorLabel(name string) (string, error) {
	op, err := lookupOperator(name)
	if err != nil {
		return "", err
	}
	return op.label, nil
}
