// Package host turns inbound commands into playback operations.
package host

// Name identifies a command.
type Name string

const (
	// Commands sent by the host environment
	PlayFile   Name = "play-file"
	PlayFolder Name = "play-folder"
	LoadFolder Name = "load-folder"

	// Playback
	Play         Name = "play"
	Pause        Name = "pause"
	Toggle       Name = "toggle"
	Next         Name = "next"
	Previous     Name = "prev"
	Index        Name = "index"
	SeekForward  Name = "seek-forward"
	SeekBackward Name = "seek-back"
	Volume       Name = "volume"
	VolumeUp     Name = "volume-up"
	VolumeDown   Name = "volume-down"

	// Queue
	Shuffle Name = "shuffle"
	Clear   Name = "clear"
	Undo    Name = "undo"
	Redo    Name = "redo"

	// Session
	Status Name = "status"
	Help   Name = "help"
	Quit   Name = "quit"
)

// RequireFlag is forwarded by some launchers as a file argument; play-file ignores it.
const RequireFlag = "--require"

// Command is one inbound request.
type Command struct {
	Name Name
	Args []string
}

// Usage describes a command for help output.
type Usage struct {
	Name        Name
	Args        string
	Description string
}

// All lists every command in help order.
var All = []Usage{
	{PlayFile, "<file>", "Insert file at the front and play it"},
	{PlayFolder, "<dir|file>...", "Replace the queue"},
	{LoadFolder, "<dir|file>...", "Put files in front of the queue"},

	{Play, "", "Resume playback"},
	{Pause, "", "Pause playback"},
	{Toggle, "", "Play/pause"},
	{Next, "[n]", "Skip forward n tracks"},
	{Previous, "[n]", "Skip back n tracks"},
	{Index, "<i>", "Select queue position i"},
	{SeekForward, "[seconds]", "Seek forward"},
	{SeekBackward, "[seconds]", "Seek back"},
	{Volume, "<0-1>", "Set volume"},
	{VolumeUp, "[step]", "Raise volume"},
	{VolumeDown, "[step]", "Lower volume"},

	{Shuffle, "", "Shuffle the queue"},
	{Clear, "", "Empty the queue"},
	{Undo, "", "Undo the last queue change"},
	{Redo, "", "Redo the last undone queue change"},

	{Status, "", "Print the playback status"},
	{Help, "", "List commands"},
	{Quit, "", "Exit"},
}
