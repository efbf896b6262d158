package gateway

func PendingCount(g *Gateway) int {
	g.lock.Lock()
	defer g.lock.Unlock()
	return len(g.pending)
}

func IsRefreshing(g *Gateway) bool {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.refreshing
}
