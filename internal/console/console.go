// Package console turns typed command lines into game actions.
//
// Players are addressed by their 1-based number as shown in the player list.
package console

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/DoyleJ11/mafia-client/internal/state"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Actions is the subset of the game manager a console drives.
type Actions interface {
	SendSetName(name string)
	SendReady(ready bool)
	SendStartGame()
	SendSetPhaseTime(p state.Phase, seconds int)
	SendJudgement(v state.Verdict)
	SendVote(votee *state.PlayerIndex)
	SendTarget(targets []state.PlayerIndex)
	SendDayTarget(target state.PlayerIndex)
	SendSaveWill(will string)
	SendSaveNotes(notes string)
	SendSaveDeathNote(note string)
	SendMessage(text string)
	SendWhisper(to state.PlayerIndex, text string)
	SendVoteFastForward(fastForward bool)
	SetChatFilter(i *state.PlayerIndex)
}

type command struct {
	usage string
	run   func(a Actions, args []string, rest string) error
}

var commands = map[string]command{
	"name": {"name <text>", func(a Actions, _ []string, rest string) error {
		if rest == "" {
			return errUsage("name <text>")
		}
		a.SendSetName(rest)
		return nil
	}},
	"ready": {"ready [on|off]", func(a Actions, args []string, _ string) error {
		on, err := toggle(args, "ready [on|off]")
		if err != nil {
			return err
		}
		a.SendReady(on)
		return nil
	}},
	"start": {"start", func(a Actions, _ []string, _ string) error {
		a.SendStartGame()
		return nil
	}},
	"phasetime": {"phasetime <phase> <seconds>", func(a Actions, args []string, _ string) error {
		if len(args) != 2 {
			return errUsage("phasetime <phase> <seconds>")
		}
		p := state.Phase(args[0])
		if !p.Valid() {
			return fmt.Errorf("unknown phase %q", args[0])
		}
		secs, err := strconv.Atoi(args[1])
		if err != nil || secs < 0 {
			return fmt.Errorf("bad seconds %q", args[1])
		}
		a.SendSetPhaseTime(p, secs)
		return nil
	}},
	"judge": {"judge guilty|innocent|abstain", func(a Actions, args []string, _ string) error {
		if len(args) != 1 || !state.Verdict(args[0]).Valid() {
			return errUsage("judge guilty|innocent|abstain")
		}
		a.SendJudgement(state.Verdict(args[0]))
		return nil
	}},
	"vote": {"vote <n>|none", func(a Actions, args []string, _ string) error {
		if len(args) != 1 {
			return errUsage("vote <n>|none")
		}
		if args[0] == "none" {
			a.SendVote(nil)
			return nil
		}
		i, err := player(args[0])
		if err != nil {
			return err
		}
		a.SendVote(&i)
		return nil
	}},
	"target": {"target [n...]", func(a Actions, args []string, _ string) error {
		targets := make([]state.PlayerIndex, 0, len(args))
		for _, arg := range args {
			i, err := player(arg)
			if err != nil {
				return err
			}
			targets = append(targets, i)
		}
		a.SendTarget(targets)
		return nil
	}},
	"daytarget": {"daytarget <n>", func(a Actions, args []string, _ string) error {
		if len(args) != 1 {
			return errUsage("daytarget <n>")
		}
		i, err := player(args[0])
		if err != nil {
			return err
		}
		a.SendDayTarget(i)
		return nil
	}},
	"say": {"say <text>", func(a Actions, _ []string, rest string) error {
		if rest == "" {
			return errUsage("say <text>")
		}
		a.SendMessage(rest)
		return nil
	}},
	"whisper": {"whisper <n> <text>", func(a Actions, args []string, rest string) error {
		if len(args) < 2 {
			return errUsage("whisper <n> <text>")
		}
		i, err := player(args[0])
		if err != nil {
			return err
		}
		text := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
		a.SendWhisper(i, text)
		return nil
	}},
	"will": {"will <text>", func(a Actions, _ []string, rest string) error {
		a.SendSaveWill(rest)
		return nil
	}},
	"notes": {"notes <text>", func(a Actions, _ []string, rest string) error {
		a.SendSaveNotes(rest)
		return nil
	}},
	"deathnote": {"deathnote [text]", func(a Actions, _ []string, rest string) error {
		a.SendSaveDeathNote(rest)
		return nil
	}},
	"ff": {"ff [on|off]", func(a Actions, args []string, _ string) error {
		on, err := toggle(args, "ff [on|off]")
		if err != nil {
			return err
		}
		a.SendVoteFastForward(on)
		return nil
	}},
	"filter": {"filter <n>|none", func(a Actions, args []string, _ string) error {
		if len(args) != 1 {
			return errUsage("filter <n>|none")
		}
		if args[0] == "none" {
			a.SetChatFilter(nil)
			return nil
		}
		i, err := player(args[0])
		if err != nil {
			return err
		}
		a.SetChatFilter(&i)
		return nil
	}},
}

// Execute runs one command line. Blank lines are ignored. Whether the action
// applies to the current state is up to the manager; Execute only checks
// syntax.
func Execute(a Actions, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	cmd, ok := commands[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.run(a, strings.Fields(rest), rest)
}

// Help lists every command's usage line, sorted by name.
func Help() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = commands[name].usage
	}
	return out
}

func errUsage(usage string) error { return fmt.Errorf("%w: %s", ErrUsage, usage) }

func player(arg string) (state.PlayerIndex, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("bad player number %q", arg)
	}
	return state.PlayerIndex(n - 1), nil
}

func toggle(args []string, usage string) (bool, error) {
	if len(args) == 0 {
		return true, nil
	}
	switch args[0] {
	case "on", "yes", "true":
		return true, nil
	case "off", "no", "false":
		return false, nil
	}
	return false, errUsage(usage)
}
