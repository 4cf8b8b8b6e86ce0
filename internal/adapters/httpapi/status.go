package httpapi

import (
	"errors"
	"net/http"

	"github.com/bnema/orca/internal/application"
	"github.com/bnema/orca/internal/domain"
	"github.com/gin-gonic/gin"
)

// StatusResponse is the wire form of application.Status.
type StatusResponse struct {
	MachineID   string        `json:"machine_id"`
	Address     string        `json:"address"`
	MaxSessions int           `json:"max_sessions"`
	Sessions    []SessionView `json:"sessions"`
	Hosts       []HostView    `json:"hosts"`
	HostsError  string        `json:"hosts_error,omitempty"`
}

type HostView struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	TenantID domain.TenantID   `json:"tenant_id"`
	Status   domain.HostStatus `json:"status"`
	Address  string            `json:"address,omitempty"`
}

func (s *Server) machineStatus(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponseFrom(s.status(c.Request.Context())))
}

func statusResponseFrom(status application.Status) StatusResponse {
	resp := StatusResponse{
		MachineID:   status.Machine.MachineID,
		Address:     status.Machine.Address,
		MaxSessions: status.MaxSessions,
		Sessions:    make([]SessionView, 0, len(status.Sessions)),
		Hosts:       make([]HostView, 0, len(status.Hosts)),
	}
	for _, session := range status.Sessions {
		resp.Sessions = append(resp.Sessions, sessionViewFrom(session))
	}
	for _, host := range status.Hosts {
		resp.Hosts = append(resp.Hosts, HostView{
			ID:       host.ID,
			Name:     host.Name,
			TenantID: host.TenantID,
			Status:   host.Status,
			Address:  host.Address,
		})
	}
	if status.HostsErr != nil {
		resp.HostsError = status.HostsErr.Error()
	}
	return resp
}

// Status converts the wire form back. A reported host error becomes an
// opaque error value.
func (r StatusResponse) Status() application.Status {
	status := application.Status{
		Machine:     domain.MachineRecord{MachineID: r.MachineID, Address: r.Address},
		MaxSessions: r.MaxSessions,
		Sessions:    make([]domain.Session, 0, len(r.Sessions)),
		Hosts:       make([]domain.HostState, 0, len(r.Hosts)),
	}
	for _, view := range r.Sessions {
		status.Sessions = append(status.Sessions, view.Session())
	}
	for _, host := range r.Hosts {
		status.Hosts = append(status.Hosts, domain.HostState{
			ID:       host.ID,
			Name:     host.Name,
			TenantID: host.TenantID,
			Status:   host.Status,
			Address:  host.Address,
		})
	}
	if r.HostsError != "" {
		status.HostsErr = errors.New(r.HostsError)
	}
	return status
}
