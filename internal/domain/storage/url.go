package storage

const (
	// ACLPrivate objects are always addressed through the bucket endpoint.
	ACLPrivate = "private"

	// DefaultRegion is used when neither an endpoint nor a region is configured.
	DefaultRegion = "oss-cn-hangzhou"

	// ProviderDomain is appended to the region to form the default endpoint.
	ProviderDomain = "aliyuncs.com"
)

// URLParams are the inputs of GenerateURL.
type URLParams struct {
	ACL          string
	CustomDomain string
	Endpoint     string
	Region       string
	Bucket       string
	Secure       bool
	Prefix       string
	Filename     string
}

// EffectiveEndpoint returns the configured endpoint or the provider default for the region.
func EffectiveEndpoint(endpoint, region string) string {
	if endpoint != "" {
		return endpoint
	}
	if region == "" {
		region = DefaultRegion
	}
	return region + "." + ProviderDomain
}

// GenerateURL builds the public URL of a stored file. It performs no I/O.
func GenerateURL(p URLParams) string {
	scheme := "http"
	if p.Secure {
		scheme = "https"
	}

	host := p.Bucket + "." + EffectiveEndpoint(p.Endpoint, p.Region)
	if p.ACL != ACLPrivate && p.CustomDomain != "" {
		host = p.CustomDomain
	}

	return scheme + "://" + host + "/" + JoinKey(p.Prefix, p.Filename)
}
