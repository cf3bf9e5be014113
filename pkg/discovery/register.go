package discovery

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/hashicorp/consul/api"
)

// Registration 描述一次 Consul 注册
type Registration struct {
	Name string
	Port int
	// HealthPath 为 HTTP 健康检查路径，如 /health
	HealthPath string
	Tags       []string
}

// NewAgentRegistration 构造注册对象，ID 使用 "服务名-IP-端口"
func NewAgentRegistration(reg Registration, ip string) *api.AgentServiceRegistration {
	return &api.AgentServiceRegistration{
		ID:      fmt.Sprintf("%s-%s-%d", reg.Name, ip, reg.Port),
		Name:    reg.Name,
		Port:    reg.Port,
		Address: ip,
		Tags:    reg.Tags,
		Check: &api.AgentServiceCheck{
			// Consul 定期请求健康检查接口
			HTTP:                           fmt.Sprintf("http://%s:%d%s", ip, reg.Port, reg.HealthPath),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s", // 挂了30秒后自动注销
		},
	}
}

// RegisterService 将服务注册到 Consul，返回注销函数
func RegisterService(reg Registration, consulAddr string, log *slog.Logger) (func() error, error) {
	config := api.DefaultConfig()
	config.Address = consulAddr
	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	localIP, err := getOutboundIP()
	if err != nil {
		return nil, err
	}

	registration := NewAgentRegistration(reg, localIP)
	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, err
	}

	log.Info("service registered",
		"service", reg.Name,
		"id", registration.ID,
		"address", fmt.Sprintf("%s:%d", localIP, reg.Port),
	)

	return func() error {
		return client.Agent().ServiceDeregister(registration.ID)
	}, nil
}

// getOutboundIP 获取本机对外 IP
// 因为如果是 Docker 或局域网，不能注册 127.0.0.1
func getOutboundIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String(), nil
}
