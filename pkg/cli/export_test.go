package cli

var (
	RunSeed         = runSeed
	EnvFileFromArgs = envFileFromArgs
	LoadEnvFile     = loadEnvFile
	GetIndexConfig  = getIndexConfig
)
