package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const CollabctlVersion = "0.1.0"

const usage = `Collaborative project control.

Connects to the authority configured in the YAML file given with --config
(or CONFIG_PATH) and the ENDPOINT, TOKEN and TIMEOUT environment variables.
Edits are written as <kind>:<content>, for example "add-axiom:Margherita SubClassOf Pizza".

Usage:
    collabctl projects [--config=<path>] [--json]
    collabctl history <project> [--config=<path>] [--json]
    collabctl roles [<project>] [--config=<path>] [--json]
    collabctl operations [<project>] [--config=<path>] [--json]
    collabctl can <operation> [<project>] [--config=<path>] [--json]
    collabctl create-project <project> [--name=<name>] [--description=<text>] [--comment=<text>] [<edit>...] [--config=<path>] [--json]
    collabctl commit <project> --base=<rev> [--comment=<text>] <edit>... [--config=<path>] [--json]
    collabctl serve-fake [--addr=<addr>] [--config=<path>]
    collabctl -h | --help
    collabctl --version

Options:
    -h --help               Show this screen.
    --version               Show version.
    --config=<path>         YAML configuration file.
    --json                  Print results as JSON.
    --name=<name>           Project name.
    --description=<text>    Project description.
    --base=<rev>            Revision the edits were computed against.
    --comment=<text>        Commit comment.
    --addr=<addr>           Listen address of the fake authority.`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "collabctl:", err)
		os.Exit(1)
	}
}
