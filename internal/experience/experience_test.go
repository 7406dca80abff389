package experience

import (
	"testing"

	"crywolf/internal/config"
	"crywolf/internal/experiment"
)

func allCorrect() experiment.Prequestionnaire {
	return experiment.Prequestionnaire{
		SubnetMask:     "255.255.255.0",
		NetworkAddress: "173.67.14.0",
		TCPFaster:      "False",
		HTTPPort:       "80",
		Firewall:       "Firewall",
		Socket:         "Socket",
		WhichModel:     "TCP/IP",
	}
}

func TestScore(t *testing.T) {
	key := config.Default().AnswerKey
	p := allCorrect()
	if got := Score(key, p); got != 7 {
		t.Errorf("Score = %d, want 7", got)
	}
	p.HTTPPort = "8080"
	p.TCPFaster = "false" // exact match only
	if got := Score(key, p); got != 5 {
		t.Errorf("Score = %d, want 5", got)
	}
	if got := Score(key, experiment.Prequestionnaire{}); got != 0 {
		t.Errorf("empty Score = %d", got)
	}
}

func TestClassify(t *testing.T) {
	cfg := config.Default()
	fiveRight := allCorrect()
	fiveRight.Socket = "Port"
	fiveRight.Firewall = "Router"
	fourRight := fiveRight
	fourRight.HTTPPort = "443"

	tests := []struct {
		name      string
		p         experiment.Prequestionnaire
		want      Group
		wantScore int
	}{
		{"security veteran", with(fiveRight, "5-10 years", "None"), Practical, 5},
		{"admin veteran", with(fiveRight, "Less than 1 year", "10+ years"), Practical, 5},
		{"knows but inexperienced", with(fiveRight, "Less than 1 year", "None"), NovicePlus, 5},
		{"experienced but low score", with(fourRight, "10+ years", "10+ years"), Novice, 4},
		{"nothing", experiment.Prequestionnaire{}, Novice, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := Classify(cfg, tt.p)
			if g != tt.want || s != tt.wantScore {
				t.Errorf("Classify = %s/%d, want %s/%d", g, s, tt.want, tt.wantScore)
			}
		})
	}
}

func TestClassifyAll_LastRowWins(t *testing.T) {
	first := allCorrect()
	first.User = "u"
	second := experiment.Prequestionnaire{User: "u"}
	got := ClassifyAll(config.Default(), []experiment.Prequestionnaire{first, second})
	if got["u"].Group != Novice || got["u"].Score != 0 {
		t.Errorf("ClassifyAll = %+v", got)
	}
}

func with(p experiment.Prequestionnaire, security, admin string) experiment.Prequestionnaire {
	p.ExpSecurity = security
	p.ExpAdmin = admin
	return p
}
