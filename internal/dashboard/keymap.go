package dashboard

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyTab       = "tab"
	KeyShiftTab  = "shift+tab"
	KeyUp        = "up"
	KeyDown      = "down"
	KeyJ         = "j"
	KeyK         = "k"
	KeyPgUp      = "pgup"
	KeyPgDown    = "pgdown"
	KeyEnter     = "enter"
	KeyEsc       = "esc"
	KeyBackspace = "backspace"
	KeyExport    = "e"
	KeyReload    = "r"
	KeyType      = "t"
	KeyMode      = "m"
	KeyGenerate  = "g"
	KeySave      = "s"
	KeyToggle    = "ctrl+t"
)
