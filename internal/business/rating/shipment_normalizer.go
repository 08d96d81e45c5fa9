package rating

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// 字段别名（按优先级排列，规范字段名在前）
var (
	originKeys      = []string{"origin", "from", "ship_from", "shipFrom"}
	destinationKeys = []string{"destination", "to", "ship_to", "shipTo"}

	streetKeys  = []string{"street", "address", "street1", "address1", "address_line1", "addressLine1"}
	cityKeys    = []string{"city", "town"}
	stateKeys   = []string{"state", "province", "region", "state_province"}
	postalKeys  = []string{"postal_code", "postalCode", "zip", "zip_code", "zipCode", "postcode"}
	countryKeys = []string{"country", "country_code", "countryCode"}
	latKeys     = []string{"lat", "latitude"}
	lngKeys     = []string{"lng", "lon", "longitude"}

	packagesKeys    = []string{"packages", "parcels", "items"}
	quantityKeys    = []string{"quantity", "qty", "pieces"}
	weightKeys      = []string{"weight"}
	lengthKeys      = []string{"length", "len", "depth"}
	widthKeys       = []string{"width"}
	heightKeys      = []string{"height"}
	dimensionKeys   = []string{"dimension", "dimensions"}
	packagingKeys   = []string{"packaging_type", "packagingType", "packaging"}
	descriptionKeys = []string{"description", "desc", "contents"}

	carrierNameKeys  = []string{"carrier_name", "carrierName", "carrier"}
	shipmentTypeKeys = []string{"shipment_type", "shipmentType"}
	serviceLevelKeys = []string{"service_level", "serviceLevel", "service"}
	unitSystemKeys   = []string{"unit_system", "unitSystem", "units"}
	servicesKeys     = []string{"additional_services", "additionalServices", "accessorials"}
	shipDateKeys     = []string{"shipment_date", "shipmentDate", "ship_date", "shipDate", "pickup_date"}
	deliveryDateKeys = []string{"delivery_date", "deliveryDate", "required_date"}
	referenceKeys    = []string{"reference_numbers", "referenceNumbers", "references", "reference"}
)

var (
	courierKeywords = []string{"courier", "express"}
	freightKeywords = []string{"freight", "ltl"}
	expressKeywords = []string{"express", "overnight"}
	economyKeywords = []string{"economy"}
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006/01/02", "01/02/2006"}

const dateLayout = "2006-01-02"

// NormalizeShipment 将表单原始数据映射为标准化请求
// 确定性、无 I/O
func NormalizeShipment(raw map[string]any) ShipmentRequest {
	if raw == nil {
		raw = map[string]any{}
	}

	carrierName := lookupString(raw, carrierNameKeys)
	shipDate := lookupString(raw, shipDateKeys)

	req := ShipmentRequest{
		Packages:           normalizePackages(raw),
		Origin:             normalizeAddress(raw, originKeys, "origin_"),
		Destination:        normalizeAddress(raw, destinationKeys, "destination_"),
		ShipmentType:       deriveShipmentType(lookupString(raw, shipmentTypeKeys), carrierName),
		ServiceLevel:       deriveServiceLevel(lookupString(raw, serviceLevelKeys), carrierName, shipDate, lookupString(raw, deliveryDateKeys)),
		UnitSystem:         normalizeUnitSystem(lookupString(raw, unitSystemKeys)),
		AdditionalServices: lookupStrings(raw, servicesKeys),
		ShipmentDate:       normalizeDate(shipDate),
		ReferenceNumbers:   lookupStrings(raw, referenceKeys),
	}

	return req
}

// FormData 将标准化请求还原为表单数据（使用规范字段名）
func (r ShipmentRequest) FormData() map[string]any {
	packages := make([]any, 0, len(r.Packages))
	for _, p := range r.Packages {
		packages = append(packages, map[string]any{
			"quantity":       p.Quantity,
			"weight":         p.Weight,
			"length":         p.Length,
			"width":          p.Width,
			"height":         p.Height,
			"packaging_type": p.PackagingType,
			"description":    p.Description,
		})
	}

	data := map[string]any{
		"packages":      packages,
		"origin":        r.Origin.formData(),
		"destination":   r.Destination.formData(),
		"shipment_type": string(r.ShipmentType),
		"service_level": string(r.ServiceLevel),
		"unit_system":   string(r.UnitSystem),
	}
	if len(r.AdditionalServices) > 0 {
		data["additional_services"] = toAnySlice(r.AdditionalServices)
	}
	if r.ShipmentDate != "" {
		data["shipment_date"] = r.ShipmentDate
	}
	if len(r.ReferenceNumbers) > 0 {
		data["reference_numbers"] = toAnySlice(r.ReferenceNumbers)
	}
	return data
}

func (a Address) formData() map[string]any {
	data := map[string]any{
		"street":      a.Street,
		"city":        a.City,
		"state":       a.State,
		"postal_code": a.PostalCode,
		"country":     a.Country,
	}
	if a.Lat != nil {
		data["lat"] = *a.Lat
	}
	if a.Lng != nil {
		data["lng"] = *a.Lng
	}
	return data
}

// normalizeAddress 优先读取嵌套地址对象，缺失时读取带前缀的平铺字段（origin_city 等）
func normalizeAddress(raw map[string]any, keys []string, flatPrefix string) Address {
	src := map[string]any{}
	if v, ok := lookup(raw, keys); ok {
		if m, err := cast.ToStringMapE(v); err == nil {
			src = m
		}
	}
	if len(src) == 0 {
		for k, v := range raw {
			if strings.HasPrefix(k, flatPrefix) {
				src[strings.TrimPrefix(k, flatPrefix)] = v
			}
		}
	}

	country := strings.ToUpper(lookupString(src, countryKeys))
	if country == "" {
		country = DefaultCountry
	}

	return Address{
		Street:     lookupString(src, streetKeys),
		City:       lookupString(src, cityKeys),
		State:      lookupString(src, stateKeys),
		PostalCode: strings.ToUpper(lookupString(src, postalKeys)),
		Country:    country,
		Lat:        lookupFloatPtr(src, latKeys),
		Lng:        lookupFloatPtr(src, lngKeys),
	}
}

func normalizePackages(raw map[string]any) []Package {
	v, ok := lookup(raw, packagesKeys)
	if !ok {
		return nil
	}

	items := toMapSlice(v)
	if len(items) == 0 {
		return nil
	}

	packages := make([]Package, 0, len(items))
	for _, item := range items {
		// 尺寸可能平铺在包裹上，也可能嵌套在 dimension 对象中
		dims := item
		if d, ok := lookup(item, dimensionKeys); ok {
			if m, err := cast.ToStringMapE(d); err == nil {
				dims = m
			}
		}

		quantity := cast.ToInt(valueOf(item, quantityKeys))
		if quantity <= 0 {
			quantity = 1
		}
		packaging := lookupString(item, packagingKeys)
		if packaging == "" {
			packaging = DefaultPackagingType
		}

		packages = append(packages, Package{
			Quantity:      quantity,
			Weight:        lookupFloat(item, weightKeys),
			Length:        firstPositive(lookupFloat(item, lengthKeys), lookupFloat(dims, lengthKeys)),
			Width:         firstPositive(lookupFloat(item, widthKeys), lookupFloat(dims, widthKeys)),
			Height:        firstPositive(lookupFloat(item, heightKeys), lookupFloat(dims, heightKeys)),
			PackagingType: packaging,
			Description:   lookupString(item, descriptionKeys),
		})
	}
	return packages
}

// deriveShipmentType 显式值优先，其次按承运商名称关键词推断，默认 freight
func deriveShipmentType(explicit, carrierName string) ShipmentType {
	switch ShipmentType(strings.ToLower(explicit)) {
	case ShipmentTypeCourier:
		return ShipmentTypeCourier
	case ShipmentTypeFreight:
		return ShipmentTypeFreight
	}

	name := strings.ToLower(carrierName)
	if containsAny(name, courierKeywords) {
		return ShipmentTypeCourier
	}
	if containsAny(name, freightKeywords) {
		return ShipmentTypeFreight
	}
	return ShipmentTypeFreight
}

// deriveServiceLevel 显式值 > 承运商名称关键词 > 日期差（≤1 天为 Express）> Standard
func deriveServiceLevel(explicit, carrierName, shipDate, deliveryDate string) ServiceLevel {
	if level, ok := ParseServiceLevel(explicit); ok {
		return level
	}

	name := strings.ToLower(carrierName)
	if containsAny(name, expressKeywords) {
		return ServiceLevelExpress
	}
	if containsAny(name, economyKeywords) {
		return ServiceLevelEconomy
	}

	ship, okShip := parseDate(shipDate)
	delivery, okDelivery := parseDate(deliveryDate)
	if okShip && okDelivery {
		delta := delivery.Sub(ship)
		if delta >= 0 && delta <= 24*time.Hour {
			return ServiceLevelExpress
		}
	}

	return ServiceLevelStandard
}

// ParseServiceLevel 解析服务等级（大小写不敏感）
func ParseServiceLevel(s string) (ServiceLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard":
		return ServiceLevelStandard, true
	case "express":
		return ServiceLevelExpress, true
	case "economy":
		return ServiceLevelEconomy, true
	}
	return "", false
}

func normalizeUnitSystem(s string) UnitSystem {
	switch strings.ToLower(s) {
	case "metric", "si", "kg", "cm":
		return UnitSystemMetric
	default:
		return UnitSystemImperial
	}
}

func normalizeDate(s string) string {
	if t, ok := parseDate(s); ok {
		return t.Format(dateLayout)
	}
	return s
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// lookup 按别名优先级取第一个非空值
func lookup(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func valueOf(m map[string]any, keys []string) any {
	v, _ := lookup(m, keys)
	return v
}

func lookupString(m map[string]any, keys []string) string {
	v, ok := lookup(m, keys)
	if !ok {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

// lookupFloat 兼容 {"value": 1.5, "unit": "kg"} 形式的重量对象
func lookupFloat(m map[string]any, keys []string) float64 {
	v, ok := lookup(m, keys)
	if !ok {
		return 0
	}
	if nested, err := cast.ToStringMapE(v); err == nil && len(nested) > 0 {
		v = nested["value"]
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0
	}
	return f
}

func lookupFloatPtr(m map[string]any, keys []string) *float64 {
	v, ok := lookup(m, keys)
	if !ok {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

func lookupStrings(m map[string]any, keys []string) []string {
	v, ok := lookup(m, keys)
	if !ok {
		return nil
	}

	var values []string
	if s, isStr := v.(string); isStr {
		values = strings.Split(s, ",")
	} else {
		values = cast.ToStringSlice(v)
	}

	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, s := range values {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func toMapSlice(v any) []map[string]any {
	switch items := v.(type) {
	case []map[string]any:
		return items
	case []any:
		out := make([]map[string]any, 0, len(items))
		for _, item := range items {
			if m, err := cast.ToStringMapE(item); err == nil {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func toAnySlice(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
