package cmd

// Options is the root for the CLI. Struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config string `short:"f" long:"config" env:"RESTCOMMANDER_CONFIG" description:"configuration file path or URL (.yaml, .yml, .json or .toml)"`

	Serve        *ServeCmd        `command:"serve"         description:"Start the HTTP server exposing the command tree over REST and MCP"`
	ListCommands *ListCommandsCmd `command:"list-commands" description:"List every command found below the root directory"`
	Command      *CommandCmd      `command:"command"       description:"Show detailed info about one command"`
	ListTools    *ListToolsCmd    `command:"list-tools"    description:"List the MCP tools derived from the command tree"`
	Tool         *ToolCmd         `command:"tool"          description:"Show the MCP input schema of one tool"`
	Exec         *ExecCmd         `command:"exec"          description:"Validate input and run one command locally"`
	State        *StateCmd        `command:"state"         description:"Print the state of one command"`
	Sha512       *Sha512Cmd       `command:"sha512"        description:"Print the hex-encoded SHA-512 of a password"`
	Sample       *SampleCmd       `command:"sample"        description:"Print a sample configuration, script or information file"`
}

// Init instantiates the sub-command referenced by the first positional argument
// so that go-flags can populate its fields.
func (o *Options) Init(firstArg string) {
	switch firstArg {
	case "serve":
		o.Serve = &ServeCmd{}
	case "list-commands":
		o.ListCommands = &ListCommandsCmd{}
	case "command":
		o.Command = &CommandCmd{}
	case "list-tools":
		o.ListTools = &ListToolsCmd{}
	case "tool":
		o.Tool = &ToolCmd{}
	case "exec":
		o.Exec = &ExecCmd{}
	case "state":
		o.State = &StateCmd{}
	case "sha512":
		o.Sha512 = &Sha512Cmd{}
	case "sample":
		o.Sample = &SampleCmd{}
	}
}
