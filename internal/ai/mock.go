package ai

import (
	"context"

	"github.com/rs/zerolog/log"
)

var _ Assistant = (*Mock)(nil)

// Mock answers every request with canned Guatemalan-menu copy. It keeps
// the assistant endpoints usable before an OpenRouter key is configured.
type Mock struct{}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Ask(ctx context.Context, prompt, extraContext string) (string, error) {
	log.Warn().Msg("using mock AI assistant, responses are canned")
	return `**Respuesta Simulada de IA**

Los tamales más populares en Guatemala son:

1. **Tamal de Recado Rojo** - El clásico tamal guatemalteco con carne de cerdo y recado rojo, envuelto en hoja de plátano.
2. **Tamal Negro** - Preparado con recado negro y pollo, muy popular en ocasiones especiales.
3. **Chuchitos** - Más pequeños, envueltos en tusa de maíz, perfectos para el desayuno.
4. **Tamal de Chipilín** - Opción vegetariana con hierbas de chipilín.

Estos tamales se disfrutan especialmente los jueves y domingos, acompañados de atol de elote o cacao caliente.

*Nota: respuesta simulada. Configura tu API Key de OpenRouter para obtener respuestas reales.*`, nil
}

func (m *Mock) SuggestCombo(ctx context.Context, preferences string) (string, error) {
	log.Warn().Msg("using mock AI assistant, responses are canned")
	return `**Combo Personalizado Sugerido**

Te recomendamos el "Combo Chapín Familiar":

- 6 tamales de recado rojo de cerdo con picante chapín
- 6 tamales negro de pollo (nivel suave), todos en hoja de plátano
- 2 jarros de 1L de atol de elote con panela
- 1 jarro de 1L de cacao batido con malvaviscos

Precio estimado: Q150.00

El atol de elote complementa el picante de los tamales y el cacao batido añade variedad para los más pequeños.

*Nota: respuesta simulada. Usa una API Key real para sugerencias personalizadas.*`, nil
}

func (m *Mock) AnalyzeSales(ctx context.Context, salesData string) (string, error) {
	log.Warn().Msg("using mock AI assistant, responses are canned")
	return `**Análisis de Ventas**

Tendencias identificadas:
1. Alta demanda de tamales tradicionales; recado rojo sigue siendo el más vendido.
2. Preferencia por picante moderado.
3. Las bebidas calientes lideran; atol de elote a la cabeza.

Recomendaciones:
- Aumentar stock de recado rojo para los fines de semana.
- Considerar un combo familiar con variedad de picantes.
- Ofrecer descuento en combos de docena.

*Nota: análisis simulado. Una API Key real proporciona insights más detallados.*`, nil
}

func (m *Mock) RecommendProducts(ctx context.Context, purchaseHistory string) (string, error) {
	log.Warn().Msg("using mock AI assistant, responses are canned")
	return `**Recomendaciones Personalizadas**

1. Combo "Madrugada del 24" (Q420): 3 docenas de tamales variados, 4 jarros de bebidas y termo de barro conmemorativo.
2. Tamal de Chipilín Vegetariano (Q8): un sabor único que complementa tus favoritos.
3. Pinol con Canela (Q15): si te gusta el atol de elote, el pinol te encantará.

*Nota: recomendaciones simuladas. Una API Key real analiza patrones más complejos.*`, nil
}

func (m *Mock) OptimizeInventory(ctx context.Context, inventoryData string) (string, error) {
	log.Warn().Msg("using mock AI assistant, responses are canned")
	return `**Optimización de Inventario**

Reposición inmediata:
- Harina de maíz amarillo: pedir 100 kg
- Hojas de plátano: pedir 500 unidades
- Recado rojo: pedir 10 kg

Predicción de demanda:
- Fin de semana: +40% en ventas de tamales
- Jueves tradicional: +25% en bebidas calientes

Sugerencias para reducir desperdicio:
- Preparar lotes más pequeños de chipilín (menor rotación)
- Usar masa de maíz blanco antes del viernes

*Nota: optimización simulada. Una API Key real usa los datos de tu inventario.*`, nil
}
