package internal

// Command is one of the psg subcommands.
type Command int

const (
	CommandHelp Command = iota
	CommandBuild
	CommandServe
	CommandClean
	CommandHistory
)

var commandInfo = map[Command]struct{ name, usage string }{
	CommandHelp:    {"help", "display this message"},
	CommandBuild:   {"build", "convert the site source in src into the docs directory"},
	CommandServe:   {"serve", "build, then serve the docs directory over HTTP"},
	CommandClean:   {"clean", "delete the docs directory"},
	CommandHistory: {"history", "list recent builds recorded in the build journal"},
}

// Commands returns every command in display order.
func Commands() []Command {
	return []Command{CommandBuild, CommandServe, CommandClean, CommandHistory, CommandHelp}
}

// ParseCommand maps a name to its Command. Unknown names map to CommandHelp.
func ParseCommand(name string) Command {
	for c, info := range commandInfo {
		if info.name == name {
			return c
		}
	}
	return CommandHelp
}

func (c Command) String() string {
	if info, ok := commandInfo[c]; ok {
		return info.name
	}
	return "unknown"
}

// Usage returns the one-line description of c.
func (c Command) Usage() string {
	return commandInfo[c].usage
}

// UsageText is printed for help, no arguments, and unknown commands.
const UsageText = `
usage: psg [--config FILE] [command]

commands:
    build   - converts the site source stored in the ` + "`src`" + ` directory, and places it in the ` + "`docs`" + ` directory.
    serve   - builds the docs directory and serves it on port 8080.
    clean   - deletes the docs directory.
    history - lists recent builds (requires journal.path in the config file).
    help    - display this message.

psg depends on the existence of the following:
    - ` + "`pandoc`" + ` in your $PATH (unless converter.engine is goldmark)
    - header.html, which is prepended to all generated html fragments
    - footer.html, which is appended to all generated html fragments.
    - a "src" directory containing the website to be generated.
`
