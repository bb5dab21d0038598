package build_info

// Filled in by the linker upon build
var (
	Version   = "dev"
	BuildDate = "unknown"
)
