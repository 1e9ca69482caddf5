package configs

// AppVersion 应用版本号，发布时可通过 -ldflags "-X" 覆盖.
const AppVersion = "1.0.0"

// AppName 应用名称.
const AppName = "wikiviews"
