package cluster

import (
	"fmt"
	"os"

	consul "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Register registra o relay no Consul para que o web app da plataforma
// descubra o endereço do websocket. O health check HTTP aponta para a rota
// /health servida pelo próprio processo.
func Register(log *zap.Logger, consulAddr, serviceName string, servicePort, healthPort int) error {
	config := consul.DefaultConfig()
	config.Address = consulAddr

	consulClient, err := consul.NewClient(config)
	if err != nil {
		return fmt.Errorf("create consul client: %w", err)
	}

	// O hostname cria um ID de serviço único por instância.
	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	serviceID := fmt.Sprintf("%s-%s", serviceName, hostname)

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: serviceName,
		Port: servicePort,

		// O 'Address' fica de fora de propósito: o agente do Consul usa o
		// endereço do contêiner que está fazendo o registro. O check ainda
		// precisa de um host, e o hostname é resolvível por DNS dentro da
		// rede do compose.
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", hostname, healthPort),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := consulClient.Agent().ServiceRegister(registration); err != nil {
		return fmt.Errorf("register service: %w", err)
	}

	log.Info("service registered in consul",
		zap.String("service", serviceName),
		zap.String("serviceId", serviceID))
	return nil
}
