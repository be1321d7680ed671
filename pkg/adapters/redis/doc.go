// Package redis stores survey sessions in Redis and coordinates replicas with a
// Redis lock.
package redis
