package flow

// JVM heap limits applied to javaprocess jobs.
const (
	JobMaxXms     = "job.max.Xms"
	MaxXmsDefault = "1G"
	JobMaxXmx     = "job.max.Xmx"
	MaxXmxDefault = "2G"
)
