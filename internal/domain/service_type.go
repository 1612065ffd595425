package domain

// ServiceType tags the trade an incident or company belongs to.
type ServiceType string

const (
	ServiceTypeElectricity ServiceType = "ELECTRICIDAD"
	ServiceTypePlumbing    ServiceType = "GASFITERIA"
	ServiceTypeLocksmith   ServiceType = "CERRAJERIA"
	ServiceTypeElevators   ServiceType = "ASCENSORES"
	ServiceTypeCleaning    ServiceType = "ASEO"
	ServiceTypeGardening   ServiceType = "JARDINERIA"
	ServiceTypePainting    ServiceType = "PINTURA"
	ServiceTypeOther       ServiceType = "OTRO"
)

// IsValid checks if the service type is a declared trade.
func (t ServiceType) IsValid() bool {
	switch t {
	case ServiceTypeElectricity, ServiceTypePlumbing, ServiceTypeLocksmith,
		ServiceTypeElevators, ServiceTypeCleaning, ServiceTypeGardening,
		ServiceTypePainting, ServiceTypeOther:
		return true
	default:
		return false
	}
}
