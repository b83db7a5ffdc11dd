package config

// defaultConfigTemplate is written by WriteDefaultConfig.
const defaultConfigTemplate = `# Transport backend: pooled, session or framework.
#   pooled    - connection-pooled, HTTP/2 capable, tuned for long event streams.
#   session   - resty session with cookies and upload progress.
#   framework - retryablehttp client limited to a single attempt.
backend: pooled

# Prefix for relative URLs given on the command line, e.g. https://api.openai.com/v1
base_url: ""

# Whole-call timeouts, including body transfer.
# "timeout" applies to the session and framework backends, "stream_timeout" to pooled.
timeout: 300s
stream_timeout: 600s

# Soft limit of connections per host.
max_conns_per_host: 1024

# Sent when a request has no User-Agent. Leave empty for the built-in value.
user_agent: ""

# Added to every request that does not set them.
headers: {}
#  Authorization: "Bearer sk-..."

# Logging: debug, info, warn, error.
log_level: info
# One-line record of every call, payloads cut to max_log_length characters.
log_payloads: true
max_log_length: 200

# Client-side rate limiting per host. 0 disables it.
rate_limit: 0
rate_burst: 1
rate_limit_hosts: 256

# Largest file the upload commands accept, e.g. 512MB. 0 disables the check.
max_upload_size: 512MB

# Event-stream relay ("aigc-client relay").
relay_listen: 127.0.0.1:8080
relay_upstream: ""
relay_allowed_origins:
  - "*"

# Standalone Prometheus endpoint, e.g. 127.0.0.1:9090. Empty disables it.
metrics_listen: ""
`
