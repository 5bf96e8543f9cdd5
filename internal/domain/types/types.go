package types

// ServiceName labels logs and metrics emitted by this process.
const ServiceName = "bus-tracker"
