package achievements

// Catalog ids referenced from code. They must match catalog.yaml.
const (
	IDJava         = "java"
	IDSudo         = "sudo"
	IDGitBlame     = "git-blame"
	IDRmRf         = "rm-rf"
	IDNotFound     = "not-found"
	IDPolyglot     = "polyglot"
	IDKonami       = "konami"
	IDIdle         = "idle"
	IDMarathon     = "marathon"
	IDClicks10     = "clicks-10"
	IDClicks50     = "clicks-50"
	IDClicks100    = "clicks-100"
	IDEscape       = "escape-artist"
	IDAvatarPoke   = "avatar-poke"
	IDRedDot       = "red-dot"
	IDNameTriple   = "name-triple"
	IDInspector    = "inspector"
	IDIndecisive   = "indecisive"
	IDPixelPeeper  = "pixel-peeper"
	IDRockBottom   = "rock-bottom"
	IDShapeShifter = "shape-shifter"
	IDHighlighter  = "highlighter"
	IDSecretAPI    = "secret-api"
	IDNullPointer  = "null-pointer"
	IDRightClick   = "right-click"
	IDEarthquake   = "earthquake"
)
