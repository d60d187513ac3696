package test

import (
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/gameerr"
	"github.com/lawnchairsociety/dungeonadventure/internal/server"
	"github.com/lawnchairsociety/dungeonadventure/internal/testclient"
)

var illegalAction = string(gameerr.CodeIllegalAction)

// TestBasicConnection checks that a fresh connection has no session.
func TestBasicConnection(serverAddr string) TestResult {
	name := "Basic Connection"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	logAction(name, "sending view before new/load")
	r, err := client.Command(server.CmdView)
	if err != nil {
		return fail(name, "%v", err)
	}
	if r.OK || r.Code != illegalAction {
		return fail(name, "view without a session: ok=%v code=%q", r.OK, r.Code)
	}
	if r.View != nil {
		return fail(name, "error without a session should carry no view")
	}
	return pass(name, "")
}

// TestHealthEndpoint checks /healthz.
func TestHealthEndpoint(serverAddr string) TestResult {
	name := "Health Endpoint"
	logAction(name, "GET /healthz")
	body, err := testclient.Healthz(serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	if body["status"] != "ok" {
		return fail(name, "status = %v", body["status"])
	}
	if _, ok := body["sessions"]; !ok {
		return fail(name, "missing sessions count")
	}
	return pass(name, "")
}

// TestMalformedMessages checks that bad input is answered and the connection
// survives it.
func TestMalformedMessages(serverAddr string) TestResult {
	name := "Malformed Messages"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	for _, raw := range []string{"{not json", `{"direction":"north"}`} {
		logAction(name, "sending "+raw)
		r, err := client.SendRaw(raw)
		if err != nil {
			return fail(name, "%q: %v", raw, err)
		}
		if r.OK || r.Code != illegalAction {
			return fail(name, "%q: ok=%v code=%q", raw, r.OK, r.Code)
		}
	}

	if _, _, err := client.NewGame("", uniqueName("Sturdy"), scenarioSeed(0)); err != nil {
		return fail(name, "connection unusable after bad input: %v", err)
	}
	r, err := client.Command("dance")
	if err != nil {
		return fail(name, "%v", err)
	}
	if r.Code != illegalAction || !strings.Contains(r.Error, "dance") {
		return fail(name, "unknown command: code=%q error=%q", r.Code, r.Error)
	}
	return pass(name, "")
}

// TestHeroNameRules checks that names are validated and normalised.
func TestHeroNameRules(serverAddr string) TestResult {
	name := "Hero Name Rules"
	client, err := connect(name, serverAddr)
	if err != nil {
		return fail(name, "%v", err)
	}
	defer client.Close()

	logAction(name, "new game named <script>")
	_, r, err := client.NewGame("", "<script>", scenarioSeed(0))
	if r == nil {
		return fail(name, "%v", err)
	}
	if r.OK || r.Code != illegalAction {
		return fail(name, "markup name accepted: ok=%v code=%q", r.OK, r.Code)
	}

	hero := uniqueName("Mira")
	logAction(name, "new game named '  "+hero+"   the Bold '")
	_, r, err = client.NewGame("", "  "+hero+"   the Bold ", scenarioSeed(0))
	if err != nil {
		return fail(name, "%v", err)
	}
	if got, want := r.View.Hero.Name, hero+" the Bold"; got != want {
		return fail(name, "name = %q, want %q", got, want)
	}
	return pass(name, "")
}
