// Package experience scores the prequestionnaire knowledge questions and
// places each participant in an experience group.
package experience

import (
	"crywolf/internal/config"
	"crywolf/internal/experiment"
)

// Group is a participant's experience group.
type Group string

const (
	Novice     Group = "Novice"
	NovicePlus Group = "Novice+"
	Practical  Group = "Practical"
)

// Groups lists the experience groups from least to most experienced.
var Groups = []Group{Novice, NovicePlus, Practical}

// Score counts the knowledge answers that exactly match the key (0..7).
func Score(key config.AnswerKey, p experiment.Prequestionnaire) int {
	pairs := [7][2]string{
		{p.SubnetMask, key.SubnetMask},
		{p.NetworkAddress, key.NetworkAddress},
		{p.TCPFaster, key.TCPFaster},
		{p.HTTPPort, key.HTTPPort},
		{p.Firewall, key.Firewall},
		{p.Socket, key.Socket},
		{p.WhichModel, key.WhichModel},
	}
	n := 0
	for _, pr := range pairs {
		if pr[0] == pr[1] {
			n++
		}
	}
	return n
}

// Classify returns the participant's group and knowledge score. Practical
// requires the knowledge threshold plus at least a year of security or
// administration experience; Novice+ requires the threshold alone.
func Classify(cfg config.Config, p experiment.Prequestionnaire) (Group, int) {
	score := Score(cfg.AnswerKey, p)
	switch {
	case score >= cfg.KnowledgeThreshold && (cfg.IsExperienced(p.ExpSecurity) || cfg.IsExperienced(p.ExpAdmin)):
		return Practical, score
	case score >= cfg.KnowledgeThreshold:
		return NovicePlus, score
	}
	return Novice, score
}

// Assignment is one participant's classification.
type Assignment struct {
	Group Group
	Score int
}

// ClassifyAll classifies every prequestionnaire row by username. When a user
// has several rows the last one wins.
func ClassifyAll(cfg config.Config, rows []experiment.Prequestionnaire) map[string]Assignment {
	out := make(map[string]Assignment, len(rows))
	for _, p := range rows {
		g, s := Classify(cfg, p)
		out[p.User] = Assignment{Group: g, Score: s}
	}
	return out
}
