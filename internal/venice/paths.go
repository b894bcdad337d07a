package venice

// Endpoint paths consumed by the core, relative to Config.BaseURL.
// Reproduced from spec.md's §6 path table; this package never enforces
// per-endpoint schemas, it only routes and classifies responses.
const (
	PathModels                    = "models"
	PathModelTraits               = "models/traits"
	PathModelCompatibilityMapping = "models/compatibility_mapping"

	PathChatCompletions = "chat/completions"

	PathEmbeddingsGenerate = "embeddings/generate"

	PathImageGenerate = "image/generate"
	PathImageEdit     = "image/edit"
	PathImageUpscale  = "image/upscale"
	PathImageStyles   = "image/styles"

	PathAudioSpeech = "audio/speech"

	PathVideoQueue    = "video/queue"
	PathVideoRetrieve = "video/retrieve"
	PathVideoQuote    = "video/quote"
	PathVideoComplete = "video/complete"

	PathCharacters = "characters"

	PathAPIKeys                = "api_keys"
	PathAPIKeysGenerateWeb3Key = "api_keys/generate_web3_key"
	PathAPIKeysRateLimits      = "api_keys/rate_limits"
	PathAPIKeysRateLimitsLog   = "api_keys/rate_limits/log"
	PathBillingUsage           = "billing/usage"
)

// CharacterPath builds the GET characters/{slug} path for one character.
func CharacterPath(slug string) string {
	return PathCharacters + "/" + slug
}

// APIKeyPath builds the DELETE api_keys/{id} path for one key.
func APIKeyPath(id string) string {
	return PathAPIKeys + "/" + id
}
