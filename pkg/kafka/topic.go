package kafka

// TopicPrefix namespaces every topic published by the platform.
const TopicPrefix = "ecommerce"

// Topic builds a topic name such as "ecommerce.payment.attempt.updated".
func Topic(domain, action string) string {
	return TopicPrefix + "." + domain + "." + action
}
