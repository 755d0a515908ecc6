// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Player Controls - these keys configure the playback facade that sits between mpv and the control surface.
const (
	PlayerBinary                 = "player.binary"
	PlayerAutoplay               = "player.autoplay"
	PlayerLooping                = "player.looping"
	PlayerFormatHint             = "player.format_hint"
	PlayerSeekStrategy           = "player.seek_strategy"
	PlayerRewindIncrementMs      = "player.rewind_increment_ms"
	PlayerFastForwardIncrementMs = "player.fast_forward_increment_ms"
	PlayerShowTimeoutMs          = "player.show_timeout_ms"
	PlayerSpeed                  = "player.speed"
	PlayerVolume                 = "player.volume"
)

// Terminal User Interface (TUI) - these keys define the control surface rendering.
const (
	TUIProgressWidth = "tui.progress_width"
)

// Recently Played - these keys govern the registry of previously opened locators.
const (
	RecentEnable = "recent.enable"
	RecentLimit  = "recent.limit"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
