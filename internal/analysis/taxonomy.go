package analysis

import "strings"

// SentinelTopic is returned when no taxonomy label applies.
const SentinelTopic = "Otro"

// MaxTopics is the most labels a transcript is classified under.
const MaxTopics = 3

// Taxonomy is the fixed set of canonical topic labels, in match priority order.
var Taxonomy = []string{
	"Tecnología y Transformación Digital", "Ciberseguridad", "Gestión de Residuos Sólidos y Medio Ambiente",
	"Salud Pública y Sistema de Salud", "Comercio Electrónico", "Telecomunicaciones",
	"Reclutamiento y Contratación de Personal", "Higiene y Desinfección",
	"Regulación de Productos Alimenticios", "Industria Alimentaria", "Economía Local",
	"Consultoría Empresarial", "Pensiones", "Gestión Financiera", "Seguridad Vial",
	"Gobierno Regional y Local", "Transporte y Movilidad Urbana", "Energía Eléctrica",
	"Servicios Financieros", "Bienes Raíces", "Marketing", "Redes Sociales",
	"Logística y Transporte", "Arrendamiento de Vehículos", "Transporte Ferroviario",
	"Educación Superior", "Educación Escolar", "Diversificación Empresarial", "Política", "Industria Cosmética",
	"Regulaciones Gubernamentales", "Sostenibilidad Empresarial",
	"Productos de Limpieza e Higiene Personal", "Seguros", "Seguridad Pública", "Retail",
	"Fabricación de Vehículos", "Industria Manufacturera", "Nutrición y Alimentación Saludable",
	"Seguridad Alimentaria", "Cooperación con el Sector Privado", "Cooperación Internacional",
	"Ayuda Humanitaria", "Desarrollo Social", "Prevención y Gestión de Desastres",
	"Reparto de Alimentos y Bebidas", "Deportes", "Minería",
	"Infraestructura Vial", "Legislación de Transporte", "Regulaciones y Protección al Consumidor",
	"Diversidad, Equidad e Inclusión (DEI)", "Supermercados y Sindicatos", "Farándula", "Cine",
	"Consumo de Alcohol y Bebidas Alcohólicas", "Alcohol Ilegal y Actividades Ilícitas", "Bebidas",
	"Agricultura y Agroindustria", "Salud y Farmacéutica", "Tabaco y Regulación",
	"Entretenimiento Audiovisual y Plataformas de Streaming", "Electrodomésticos y Línea Blanca",
	"Samsung Corporativo y Competencia en la Industria Tecnológica",
	"Samsung en el Sector Empresarial y Alianzas Estratégicas B2B",
	"Prácticas Corporativas y Responsabilidad Empresarial", "Construcción",
	"Industria de Alimentos y Restaurantes", "Seguridad Laboral en la Industria de Restaurantes",
	"Hidrocarburos", "Saneamiento", "Comunicación Corporativa y Relaciones Públicas", "Inmobiliario",
	"Centros Comerciales", "Mercado Financiero y Bolsa de Valores", "Pesca", "Clima",
	"Artes y Cultura", "Literatura y Crítica Literaria", "Aplicaciones de Transporte Urbano",
	"Política Internacional", "Relaciones Diplomáticas", "Conflictos Internacionales",
	"Derechos Humanos", "Migración y Refugiados", "Cambio Climático y Medio Ambiente",
	"Energías Renovables", "Innovación Tecnológica", "Inteligencia Artificial",
	"Blockchain y Criptomonedas", "Startups y Emprendimiento", "Economía Digital",
	"Mercado Laboral", "Sindicalismo y Derechos Laborales", "Igualdad de Género",
	"Derechos LGBTQ+", "Movimientos Sociales", "Activismo",
	"Investigación Científica", "Salud Mental",
	"Medicina Alternativa", "Fitness y Bienestar", "Nutrición y Dietas",
	"Gastronomía", "Turismo y Viajes", "Hotelería",
	"Moda y Tendencias", "Belleza y Cosméticos", "Lujo y Estilo de Vida",
	"Arquitectura y Diseño", "Arte Contemporáneo", "Música",
	"Teatro y Artes Escénicas", "Festivales Culturales", "Patrimonio Cultural",
	"Religión y Espiritualidad", "Filosofía y Ética", "Psicología",
	"Sociología", "Antropología", "Historia",
	"Arqueología", "Paleontología", "Astronomía y Exploración Espacial",
	"Física y Matemáticas", "Biología y Genética", "Química",
	"Oceanografía", "Geología", "Meteorología",
	"Aviación", "Transporte Marítimo", "Vehículos Autónomos",
	"Robótica", "Internet de las Cosas (IoT)", "Realidad Virtual y Aumentada",
	"Videojuegos y eSports", "Redes 5G", "Ciberseguridad Nacional",
	"Espionaje y Inteligencia", "Terrorismo y Contrainsurgencia", "Seguridad Nacional",
	"Fuerzas Armadas", "Industria de Defensa", "Política Monetaria",
	"Inflación y Deflación", "Comercio Internacional", "Acuerdos Comerciales",
	"Propiedad Intelectual", "Derecho Internacional", "Justicia y Sistema Judicial",
	"Reforma Penitenciaria", "Crimen Organizado", "Narcotráfico",
	"Corrupción y Transparencia", "Lobby y Grupos de Interés", "Elecciones y Sistemas Electorales",
	"Partidos Políticos", "Monarquía y Nobleza", "Gobierno y Administración Pública",
	"Desarrollo Urbano", "Smart Cities", "Transporte Público",
	"Movilidad Sostenible", "Urbanismo", "Vivienda Social",
	"Pobreza y Desigualdad", "Programas Sociales", "Tercera Edad y Envejecimiento",
	"Juventud", "Infancia y Derechos del Niño", "Familia y Relaciones",
	"Matrimonio y Divorcio", "Adopción", "Reproducción Asistida",
	"Sexualidad", "Educación Sexual", "Planificación Familiar",
	"Aborto y Derechos Reproductivos", "Violencia de Género", "Acoso y Abuso",
	"Trata de Personas", "Trabajo Infantil", "Explotación Laboral",
	"Sindicatos", "Huelgas y Protestas", "Negociaciones Colectivas",
	"Reformas Laborales", "Teletrabajo", "Automatización y Futuro del Trabajo",
	"Industria 4.0", "Nanotecnología", "Biotecnología", "Ingeniería Genética", "Clonación", "Medicina Regenerativa",
	"Trasplantes", "Enfermedades Raras", "Epidemias y Pandemias",
	"Vacunas", "Antibióticos y Resistencia", "Salud Reproductiva",
	"Maternidad y Paternidad", "Crianza", "Educación Infantil",
	"Bullying y Acoso Escolar", "Educación Especial", "Aprendizaje en Línea",
	"Homeschooling", "Educación Continua", "Formación Profesional",
	"Idiomas y Multilingüismo", "Intercambio Cultural", "Globalización",
	"Nacionalismo", "Separatismo", "Movimientos Independentistas",
	"Colonialismo y Postcolonialismo", "Imperialismo", "Geopolítica",
	"Fronteras y Territorios", "Recursos Naturales", "Agua y Saneamiento",
	"Desertificación", "Deforestación", "Biodiversidad",
	"Conservación de Especies", "Parques Nacionales", "Ecoturismo",
	"Contaminación", "Reciclaje", "Economía Circular",
	"Consumo Responsable", "Comercio Justo", "Responsabilidad Social Corporativa",
	"Ética Empresarial", "Gobierno Corporativo", "Inversión Socialmente Responsable",
	"Microfinanzas", "Inclusión Financiera", "Banca Ética",
	"Cooperativas", "Economía Social", "Voluntariado",
	"ONG y Organizaciones Sin Fines de Lucro", "Filantropía", "Mecenazgo",
	"Crowdfunding", "Economía Colaborativa", "Trueque y Monedas Alternativas",
	"Economía Informal", "Evasión Fiscal", "Paraísos Fiscales",
	"Blanqueo de Capitales", "Cibercrimen", "Hacktivismo",
	"Privacidad y Protección de Datos", "Big Data", "Analítica de Datos",
	"Machine Learning", "Computación Cuántica", "Supercomputación",
	"Otros",
}

// MatchTaxonomy returns the taxonomy labels contained, case-insensitively, in
// answer. At most MaxTopics labels are kept, in taxonomy order; with none the
// result is the sentinel.
func MatchTaxonomy(answer string) []string {
	lower := strings.ToLower(answer)
	var found []string
	for _, label := range Taxonomy {
		if strings.Contains(lower, strings.ToLower(label)) {
			found = append(found, label)
			if len(found) == MaxTopics {
				break
			}
		}
	}
	if len(found) == 0 {
		return []string{SentinelTopic}
	}
	return found
}
