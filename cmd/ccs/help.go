package main

import "fmt"

func printHelp() {
	fmt.Printf(`%s

Usage:
  ccs                 Pick a session and resume it
  ccs resume <query>  Resume directly by session id, tag, or id prefix
  ccs new <name>      Start a new session tagged <name>
  ccs tmp [args...]   Start an ephemeral session (deleted after it ends)
  ccs tag [name]      Pick a session and tag it (prompts if no name given)
  ccs untag           Pick a session and remove its tag
  ccs pin             Pick sessions and toggle their pins
  ccs rm              Pick sessions and delete them
  ccs list            List all sessions
  ccs search <query>  Fuzzy-search sessions
  ccs version         Print version
  ccs help            Show this help

Pinned sessions sort first; within a tier, newest first. The picker shows
a preview pane with the first message and recent conversation topics.

Configuration lives in ~/.config/ccs/config.toml ([claude] command and
config_dir, [selector] command and args, [logs] level).
`, accentStyle.Render("◆ ccs — Claude Code Session Manager"))
}
