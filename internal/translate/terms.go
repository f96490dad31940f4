package translate

import (
	"regexp"
	"sort"
)

// protectedTerms survive translation verbatim. Matching is word-bounded so
// short entries cannot fire inside longer words, and longest-first so a
// term contained in another ("Redis" inside "Rediscover" is blocked by the
// boundary, "Argo" inside "Argo CD" by the ordering) never splits a longer
// protected span.
var protectedTerms = []string{
	// products
	"MinIO", "Seq", "Ceph", "MongoDB", "PostgreSQL", "RabbitMQ",
	"Elasticsearch", "Kibana", "Redis", "Kafka", "Cassandra",
	"Logstash", "Beats", "Filebeat", "Metricbeat", "Lucene",
	"OpenSearch", "Splunk", "Datadog", "PagerDuty", "OpsGenie",
	"Prometheus", "Grafana", "Jaeger", "Zipkin", "OpenTelemetry",
	"Nginx", "HAProxy", "Envoy", "Istio", "Linkerd",
	"Jenkins", "ArgoCD", "Argo CD", "Argo",
	"Terraform", "Ansible", "Vagrant", "Packer",
	"GitHub", "GitLab", "Bitbucket",

	// cloud and platform
	"AWS", "GCP", "Azure", "Cloudflare",
	"Kubernetes", "Docker", "Helm", "Podman",

	// kubernetes objects
	"pod", "pods", "node", "nodes", "kubelet", "kubeadm", "kubectl",
	"kube-proxy", "kube-apiserver", "kube-controller-manager", "kube-scheduler",
	"StatefulSet", "StatefulSets", "DaemonSet", "DaemonSets",
	"ReplicaSet", "ReplicaSets", "Deployment", "Deployments",
	"ResourceClaim", "ResourceClaims", "ResourceSlice",
	"EndpointSlice", "EndpointSlices",
	"ConfigMap", "ConfigMaps", "Secret", "Secrets",
	"PersistentVolume", "PersistentVolumeClaim",
	"StorageClass", "StorageClasses", "Namespace", "Namespaces",
	"ClusterRole", "ClusterRoleBinding",
	"NodePrepareResources", "NodeUnprepareResources",
	"CronJob", "CronJobs", "Job", "Jobs",
	"Ingress", "IngressClass",
	"HorizontalPodAutoscaler", "VerticalPodAutoscaler",

	// networking
	"IPv4", "IPv6", "IPVS", "iptables", "winkernel",
	"dual-stack", "PreferDualStack", "RequireDualStack",
	"LoadBalancer", "load balancer",

	// protocols
	"API", "REST", "gRPC", "GraphQL", "HTTP", "HTTPS",
	"DNS", "CDN", "TCP", "UDP", "WebSocket",
	"AMQP", "MQTT", "LDAP", "SAML", "OAuth", "JWT", "TLS", "SSL",
	"SSH", "FTP", "SFTP", "NFS", "SMB", "iSCSI",

	// database and storage
	"SQL", "NoSQL", "MySQL", "MariaDB", "SQLite",
	"PGPool", "pgvector", "VACUUM", "WAL", "MVCC",
	"RADOS", "RGW", "CephFS", "BlueStore", "OSD",
	"Erasure Coding", "Object Storage", "Block Storage",
	"Replication", "Sharding", "Clustering", "Failover",

	// security
	"CVE", "CVSS", "XSS", "CSRF", "SSRF",
	"SELinux", "RBAC", "AppArmor",
	"OWASP", "NIST", "MITRE",
	"zero-day", "Zero-Day",

	// SRE and DevOps
	"SRE", "SLO", "SLA", "SLI",
	"MTTR", "MTTF", "MTTD", "MTBF",
	"DevOps", "DevSecOps", "GitOps",
	"CI/CD", "Toil", "Runbook", "Playbook", "Postmortem", "Post-mortem",
	"On-call", "Oncall", "On-Call",
	"Chaos Engineering", "Chaos Monkey",
	"Auto-scaling", "Autoscaling",
	"Microservices", "Monolith",
	"Observability", "Monitoring", "Alerting",
	"IaC", "Infrastructure as Code",

	// release tags
	"RELEASE", "LTS", "GA", "RC", "Beta", "Alpha",
	"CHANGELOG",

	// hardware and units
	"CPU", "GPU", "RAM", "SSD", "HDD", "NVMe",
	"GB", "TB", "MB", "KB",

	// languages and tooling
	"Go", "Rust", "Python", "Java", "JavaScript", "TypeScript",
	"Node.js", "npm", "yarn", "pip", "cargo",
	"goroutine", "goroutines",
	"async", "await", "callback", "promise",

	// operating systems
	"Linux", "Ubuntu", "CentOS", "RHEL", "Debian", "Alpine",
	"Windows", "macOS", "FreeBSD",

	// ecosystem
	"CNCF", "etcd", "Patroni", "CloudNativePG", "Harbor",
	"feature gate",
	"DRA", "HNS", "hnslib",
}

// termPatterns holds one compiled matcher per term, longest term first.
var termPatterns []*regexp.Regexp

func init() {
	seen := make(map[string]struct{}, len(protectedTerms))
	unique := protectedTerms[:0:0]
	for _, t := range protectedTerms {
		if _, dup := seen[t]; !dup {
			seen[t] = struct{}{}
			unique = append(unique, t)
		}
	}
	sort.SliceStable(unique, func(i, j int) bool { return len(unique[i]) > len(unique[j]) })
	termPatterns = make([]*regexp.Regexp, len(unique))
	for i, t := range unique {
		termPatterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t) + `\b`)
	}
}
