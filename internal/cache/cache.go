package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/habicapital/docs-service/internal/models"
)

// DefaultTTL es el tiempo de vida por defecto de las entradas.
const DefaultTTL = 5 * time.Minute

// Cache es un caché en memoria con expiración por TTL para las lecturas del
// espejo: clientes individuales por clave normalizada (nombre, cédula) y un
// snapshot único del dashboard. No hay límite de tamaño ni LRU: es una
// optimización de mejor esfuerzo por proceso, no un componente de
// correctitud. El reloj se inyecta para poder probar la expiración.
type Cache struct {
	mu        sync.RWMutex
	clients   map[string]clientEntry
	dashboard *dashboardEntry
	ttl       time.Duration
	now       func() time.Time
}

type clientEntry struct {
	info      *models.ClientInfo
	timestamp time.Time
}

type dashboardEntry struct {
	dashboard *models.Dashboard
	timestamp time.Time
}

// New crea un caché con el TTL dado y el reloj del sistema.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock crea un caché con reloj inyectado.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		clients: make(map[string]clientEntry),
		ttl:     ttl,
		now:     now,
	}
}

// ClientKey genera la clave normalizada de un cliente.
func ClientKey(clientName, clientID string) string {
	return strings.ToLower(strings.TrimSpace(clientName)) + "_" + strings.TrimSpace(clientID)
}

// isValid verifica si un timestamp sigue dentro del TTL.
func (c *Cache) isValid(timestamp time.Time) bool {
	return c.now().Sub(timestamp) < c.ttl
}

// GetClient retorna el cliente cacheado si existe y no expiró. Una entrada
// expirada se elimina y cuenta como miss.
func (c *Cache) GetClient(clientName, clientID string) *models.ClientInfo {
	key := ClientKey(clientName, clientID)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.clients[key]
	if !ok {
		return nil
	}
	if !c.isValid(entry.timestamp) {
		delete(c.clients, key)
		return nil
	}

	return entry.info
}

// SetClient guarda un cliente en el caché. La escritura simplemente
// sobreescribe la entrada anterior.
func (c *Cache) SetClient(clientName, clientID string, info *models.ClientInfo) {
	key := ClientKey(clientName, clientID)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients[key] = clientEntry{info: info, timestamp: c.now()}
}

// GetDashboard retorna el snapshot del dashboard si no expiró.
func (c *Cache) GetDashboard() *models.Dashboard {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dashboard == nil {
		return nil
	}
	if !c.isValid(c.dashboard.timestamp) {
		c.dashboard = nil
		return nil
	}

	return c.dashboard.dashboard
}

// SetDashboard guarda el snapshot del dashboard.
func (c *Cache) SetDashboard(dashboard *models.Dashboard) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dashboard = &dashboardEntry{dashboard: dashboard, timestamp: c.now()}
}

// InvalidateClient elimina la entrada de un cliente. Se usa después de
// subir un documento.
func (c *Cache) InvalidateClient(clientName, clientID string) {
	key := ClientKey(clientName, clientID)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.clients, key)
}

// InvalidateDashboard elimina el snapshot del dashboard.
func (c *Cache) InvalidateDashboard() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.dashboard = nil
}

// Clear vacía todo el caché.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clients = make(map[string]clientEntry)
	c.dashboard = nil
}

// Stats son los contadores del caché para diagnóstico.
type Stats struct {
	ClientEntries   int  `json:"clientEntries"`
	DashboardCached bool `json:"dashboardCached"`
}

// GetStats retorna las estadísticas actuales del caché.
func (c *Cache) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Stats{
		ClientEntries:   len(c.clients),
		DashboardCached: c.dashboard != nil,
	}
}
