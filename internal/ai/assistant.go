package ai

import (
	"context"
	"fmt"

	"github.com/Solorzano97/LaCazuelaChapina/pkg/config"
)

// Assistant answers free-form questions about the business and produces
// combo, sales and inventory recommendations. Implementations return an
// in-band descriptive message on gateway trouble rather than failing the
// request, so the storefront can always show something to the operator.
type Assistant interface {
	Ask(ctx context.Context, prompt, extraContext string) (string, error)
	SuggestCombo(ctx context.Context, preferences string) (string, error)
	AnalyzeSales(ctx context.Context, salesData string) (string, error)
	RecommendProducts(ctx context.Context, purchaseHistory string) (string, error)
	OptimizeInventory(ctx context.Context, inventoryData string) (string, error)
}

const systemPrompt = `Eres un asistente especializado en La Cazuela Chapina, un negocio guatemalteco de tamales y bebidas tradicionales.
Conoces todos los productos: tamales con diferentes masas (maíz amarillo, blanco, arroz), rellenos (recado rojo de cerdo, negro de pollo, chipilín vegetariano, chuchito),
envolturas (hoja de plátano, tusa de maíz) y niveles de picante. También bebidas como atol de elote, atole shuco, pinol y cacao batido.
Hablas de forma amigable, profesional y con conocimiento de la cultura guatemalteca.`

func comboPrompt(preferences string) string {
	return fmt.Sprintf(`Un cliente tiene las siguientes preferencias: %s

Basándote en nuestro menú de La Cazuela Chapina, sugiere un combo personalizado que incluya:
1. Cantidad y tipo de tamales (especifica masa, relleno, envoltura, picante)
2. Bebidas recomendadas (tipo, endulzante, topping)
3. Precio estimado del combo
4. Breve explicación de por qué esta combinación es ideal para el cliente

Sé específico con los ingredientes disponibles y mantén un tono amigable y guatemalteco.`, preferences)
}

func salesPrompt(salesData string) string {
	return fmt.Sprintf(`Analiza los siguientes datos de ventas de La Cazuela Chapina:

%s

Proporciona:
1. Principales tendencias identificadas
2. Productos más y menos vendidos
3. Recomendaciones para mejorar ventas
4. Oportunidades de nuevos combos
5. Sugerencias de gestión de inventario

Sé conciso pero informativo.`, salesData)
}

func recommendPrompt(history string) string {
	return fmt.Sprintf(`Basándote en el historial de compras del cliente:

%s

Recomienda 3 productos o combos que podrían interesarle, explicando por qué cada uno sería una buena opción.
Considera variedad, complementariedad y preferencias mostradas.`, history)
}

func inventoryPrompt(inventoryData string) string {
	return fmt.Sprintf(`Revisa el siguiente estado de inventario de La Cazuela Chapina:

%s

Proporciona:
1. Materias primas que necesitan reposición urgente
2. Predicción de demanda para los próximos días
3. Sugerencias para reducir desperdicio
4. Optimización de órdenes de compra
5. Alertas sobre productos en punto crítico`, inventoryData)
}

const inventoryContext = "Eres un experto en gestión de inventarios para negocios de alimentos. Conoces las particularidades de mantener ingredientes frescos y minimizar mermas."

// New picks the gateway-backed assistant when an API key is configured,
// otherwise the canned mock so the endpoints keep working in development.
func New(cfg *config.Config) Assistant {
	if cfg.OpenRouter.UseMock || cfg.OpenRouter.APIKey == "" {
		return NewMock()
	}
	return NewOpenRouter(cfg)
}
